package types

// UseConfig holds the three disjoint flag-resolution sets: always-on,
// always-off, solver-decided. A flag absent from all three sets is
// implicitly always-off.
type UseConfig struct {
	Enabled       map[string]bool
	Disabled      map[string]bool
	SolverDecided map[string]bool
}

func NewUseConfig(enabled, disabled, solverDecided []string) UseConfig {
	cfg := UseConfig{
		Enabled:       map[string]bool{},
		Disabled:      map[string]bool{},
		SolverDecided: map[string]bool{},
	}
	for _, f := range enabled {
		cfg.Enabled[f] = true
	}
	for _, f := range disabled {
		cfg.Disabled[f] = true
	}
	for _, f := range solverDecided {
		cfg.SolverDecided[f] = true
	}
	return cfg
}

func (c UseConfig) IsSolverDecided(flag string) bool { return c.SolverDecided[flag] }

// IsEnabled reports whether a flag is eager-on. Flags not in Enabled are
// eager-off unless solver-decided.
func (c UseConfig) IsEnabled(flag string) bool { return c.Enabled[flag] }

// InstalledPolicy marks how strongly an installed entry should be kept.
type InstalledPolicy int

const (
	Favored InstalledPolicy = iota
	Locked
)

// InstalledEntry pairs installed package metadata with its retention
// policy.
type InstalledEntry struct {
	Metadata PackageMetadata
	Policy   InstalledPolicy
}

// InstalledSet is the caller-supplied installed-package facts threaded into
// the provider at construction.
type InstalledSet struct {
	Packages []InstalledEntry
}

func (s *InstalledSet) Add(meta PackageMetadata, policy InstalledPolicy) {
	s.Packages = append(s.Packages, InstalledEntry{Metadata: meta, Policy: policy})
}

func (s *InstalledSet) AddFavored(meta PackageMetadata) { s.Add(meta, Favored) }

func (s *InstalledSet) AddLocked(meta PackageMetadata) { s.Add(meta, Locked) }
