package types

import "fmt"

// Spec is the YAML scenario document the CLI consumes: a package
// repository, a USE configuration, installed-package facts, and the root
// atoms to resolve.
type Spec struct {
	Packages  []PackageSpec   `yaml:"packages"`
	Use       UseSpec         `yaml:"use"`
	Installed []InstalledSpec `yaml:"installed"`
	Roots     []string        `yaml:"roots"`
}

// PackageSpec is one package version as written in a spec file.
// Dependency fields hold full dependency strings, one per class.
type PackageSpec struct {
	Cpv     string   `yaml:"cpv"`
	Slot    string   `yaml:"slot"`
	Subslot string   `yaml:"subslot"`
	Repo    string   `yaml:"repo"`
	Iuse    []string `yaml:"iuse"`
	Use     []string `yaml:"use"`
	Depend  string   `yaml:"depend"`
	Rdepend string   `yaml:"rdepend"`
	Bdepend string   `yaml:"bdepend"`
	Pdepend string   `yaml:"pdepend"`
	Idepend string   `yaml:"idepend"`
}

// UseSpec mirrors UseConfig with YAML-friendly lists.
type UseSpec struct {
	Enabled       []string `yaml:"enabled"`
	Disabled      []string `yaml:"disabled"`
	SolverDecided []string `yaml:"solver_decided"`
}

// InstalledSpec is an installed package plus its retention policy
// ("favored" or "locked").
type InstalledSpec struct {
	PackageSpec `yaml:",inline"`
	Policy      string `yaml:"policy"`
}

// Compile parses a package entry into metadata.
func (p PackageSpec) Compile() (PackageMetadata, error) {
	cpv, err := ParseCpv(p.Cpv)
	if err != nil {
		return PackageMetadata{}, err
	}
	meta := PackageMetadata{
		Cpv:      cpv,
		Slot:     p.Slot,
		Subslot:  p.Subslot,
		Repo:     p.Repo,
		Iuse:     p.Iuse,
		UseFlags: map[string]bool{},
	}
	for _, flag := range p.Use {
		meta.UseFlags[flag] = true
	}
	for _, class := range []struct {
		raw    string
		target *[]DepEntry
	}{
		{p.Depend, &meta.Dependencies.Depend},
		{p.Rdepend, &meta.Dependencies.Rdepend},
		{p.Bdepend, &meta.Dependencies.Bdepend},
		{p.Pdepend, &meta.Dependencies.Pdepend},
		{p.Idepend, &meta.Dependencies.Idepend},
	} {
		if class.raw == "" {
			continue
		}
		entries, err := ParseDepEntries(class.raw)
		if err != nil {
			return PackageMetadata{}, fmt.Errorf("package %s: %w", p.Cpv, err)
		}
		*class.target = entries
	}
	return meta, nil
}

// CompileUse converts the YAML lists into a UseConfig.
func (s UseSpec) CompileUse() UseConfig {
	return NewUseConfig(s.Enabled, s.Disabled, s.SolverDecided)
}

// CompileInstalled parses the installed entries.
func (s Spec) CompileInstalled() (InstalledSet, error) {
	var installed InstalledSet
	for _, entry := range s.Installed {
		meta, err := entry.Compile()
		if err != nil {
			return InstalledSet{}, err
		}
		switch entry.Policy {
		case "locked":
			installed.AddLocked(meta)
		case "favored", "":
			installed.AddFavored(meta)
		default:
			return InstalledSet{}, fmt.Errorf("installed %s: unknown policy %q", entry.Cpv, entry.Policy)
		}
	}
	return installed, nil
}

// CompileRoots parses the root atoms.
func (s Spec) CompileRoots() ([]Dep, error) {
	roots := make([]Dep, 0, len(s.Roots))
	for _, raw := range s.Roots {
		dep, err := ParseDep(raw)
		if err != nil {
			return nil, fmt.Errorf("root atom: %w", err)
		}
		roots = append(roots, dep)
	}
	return roots, nil
}
