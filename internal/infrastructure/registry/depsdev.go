package registry

import (
	"context"
	"crypto/x509"
	"fmt"

	pb "deps.dev/api/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/component"
	"github.com/felixgeelhaar/licensemap/internal/log"
)

// DepsDevAddress is the public deps.dev gRPC endpoint.
const DepsDevAddress = "api.deps.dev:443"

// DepsDevResolver reads Maven license data from the deps.dev Insights API.
// deps.dev reports one license list per version; it is returned as the
// declared licenses.
type DepsDevResolver struct {
	client pb.InsightsClient
	logger log.Logger
}

var _ ports.ComponentResolver = (*DepsDevResolver)(nil)

// NewDepsDevResolver wraps an Insights client.
func NewDepsDevResolver(client pb.InsightsClient, logger log.Logger) *DepsDevResolver {
	return &DepsDevResolver{client: client, logger: log.OrNop(logger)}
}

// DialDepsDev opens a TLS connection to addr using the system roots. The
// caller closes the returned connection.
func DialDepsDev(addr string) (*grpc.ClientConn, error) {
	if addr == "" {
		addr = DepsDevAddress
	}
	pool, err := x509.SystemCertPool()
	if err != nil {
		return nil, fmt.Errorf("failed to load system cert pool: %w", err)
	}
	creds := credentials.NewClientTLSFromCert(pool, "")
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return conn, nil
}

// Resolve implements ports.ComponentResolver.
func (r *DepsDevResolver) Resolve(ctx context.Context, c artifact.Coordinate) (*component.Info, error) {
	req := &pb.GetVersionRequest{
		VersionKey: &pb.VersionKey{
			System:  pb.System_MAVEN,
			Name:    c.GA(),
			Version: c.Version,
		},
	}
	log.Debug(ctx, r.logger, "querying deps.dev", log.String("artifact", c.String()))

	resp, err := r.client.GetVersion(ctx, req)
	switch status.Code(err) {
	case codes.OK:
	case codes.NotFound:
		return nil, fmt.Errorf("%s: %w", c, ports.ErrComponentNotFound)
	default:
		return nil, fmt.Errorf("failed to query deps.dev for %s: %w", c, err)
	}

	info := &component.Info{}
	for _, l := range resp.GetLicenses() {
		info.DeclaredLicenses = append(info.DeclaredLicenses, component.LicenseEntry{LicenseID: l})
	}
	return info, nil
}
