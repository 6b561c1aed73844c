// Package exitcode defines exit codes for the licensemap CLI.
package exitcode

// Exit codes:
// 0 = every dependency resolved, or unknowns tolerated
// 1 = unresolved licenses or unknown configured dependencies under a fail policy
// 2 = tool or configuration error
const (
	Success         = 0
	UnknownLicenses = 1
	Error           = 2
)

// FromResult converts a run outcome to an exit code.
func FromResult(hasUnknown, failOnUnknown bool) int {
	if hasUnknown && failOnUnknown {
		return UnknownLicenses
	}
	return Success
}

// Description returns a human-readable description of the exit code.
func Description(code int) string {
	switch code {
	case Success:
		return "All licenses resolved"
	case UnknownLicenses:
		return "Dependencies with unknown licenses"
	case Error:
		return "Tool or configuration error"
	default:
		return "Unknown exit code"
	}
}
