package registry

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/component"
	"github.com/felixgeelhaar/licensemap/internal/log"
)

// newBreaker trips after consecutive failures. logger is read on each
// state change so options may set it after the breaker.
func newBreaker(name string, failures uint32, coolDown time.Duration, logger func() log.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: coolDown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A missing component is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ports.ErrComponentNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), logger(), "registry circuit breaker changed state",
				log.String("breaker", name),
				log.String("from", from.String()),
				log.String("to", to.String()))
		},
	})
}

func execute(cb *gobreaker.CircuitBreaker, fn func() (*component.Info, error)) (*component.Info, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrCircuitOpen, err)
	}
	if err != nil {
		return nil, err
	}
	info, _ := out.(*component.Info)
	return info, nil
}
