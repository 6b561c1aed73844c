package ports

// UnknownDependencyStrategy handles a configured dependency id that never
// matched a resolved dependency.
type UnknownDependencyStrategy interface {
	// HandleUnknownDependency is called once per unmatched id. A non-nil
	// error aborts the run.
	HandleUnknownDependency(id string) error
}
