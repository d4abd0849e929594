package app

type ResolveRequest struct {
	// SpecPath points at the YAML scenario file.
	SpecPath string
	// Roots overrides the spec's root atoms when non-empty.
	Roots []string
	// WithOrder also computes the installation order.
	WithOrder bool
}

type ResolvedPackage struct {
	Cpv     string
	Slot    string
	Subslot string
	Repo    string
	// Virtual marks solver-synthesized packages (flag and choice
	// virtuals) so callers can separate them from real installs.
	Virtual bool
}

type ResolveResult struct {
	// Packages lists the solution sorted by CPV.
	Packages []ResolvedPackage
	// InstallOrder lists real packages dependency-first. Empty unless
	// WithOrder was set.
	InstallOrder []string
	// Cycle lists the packages left unordered when the non-deferrable
	// edges contain a cycle. The solve itself still succeeded.
	Cycle []string
}
