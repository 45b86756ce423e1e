// Package manifest loads TOML project manifests and builds the object
// graph consumed by the archive serializer.
//
// The manifest declares the project name, the file groups, the targets
// with their phases, dependency edges, and layered settings. The loader is
// the only place the graph is constructed, so it is also where structural
// problems are rejected: dangling references fail with [ErrUnknownTarget]
// or [ErrUnknownFile], and a cyclic target graph fails with
// [closure.ErrCycle] before any serialization starts.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/pbxforge/pbxforge/pkg/closure"
	"github.com/pbxforge/pbxforge/pkg/pbx"
	"github.com/pbxforge/pbxforge/pkg/settings"
)

var (
	// ErrUnknownTarget is returned when a dependency names a target the
	// manifest does not declare.
	ErrUnknownTarget = errors.New("unknown target")

	// ErrUnknownFile is returned when a target lists a file no group
	// declares.
	ErrUnknownFile = errors.New("unknown file")

	// ErrUnknownProduct is returned for a product kind outside the
	// supported set.
	ErrUnknownProduct = errors.New("unknown product kind")

	// ErrDuplicateName is returned when two targets or two files share a
	// name, which would make dependency and source references ambiguous.
	ErrDuplicateName = errors.New("duplicate name")
)

// productTypes maps manifest product kinds to archive product types.
// An empty kind declares an aggregate target.
var productTypes = map[string]string{
	"executable":     pbx.ProductTypeExecutable,
	"library":        pbx.ProductTypeLibrary,
	"static-library": pbx.ProductTypeStaticLibrary,
	"framework":      pbx.ProductTypeFramework,
	"test":           pbx.ProductTypeUnitTest,
	"application":    pbx.ProductTypeApplication,
}

// =============================================================================
// Manifest Schema
// =============================================================================

type manifestFile struct {
	Name           string        `toml:"name"`
	DefaultVariant string        `toml:"default_variant"`
	Settings       settingsTable `toml:"settings"`
	Groups         []groupEntry  `toml:"group"`
	Targets        []targetEntry `toml:"target"`
}

// settingsTable is one layered settings declaration: a base record plus
// one overlay record per variant name.
type settingsTable struct {
	Base    settings.Settings            `toml:"base"`
	Variant map[string]settings.Settings `toml:"variant"`
}

type groupEntry struct {
	Name  string   `toml:"name"`
	Path  string   `toml:"path"`
	Files []string `toml:"files"`
}

type targetEntry struct {
	Name       string        `toml:"name"`
	Product    string        `toml:"product"`
	Sources    []string      `toml:"sources"`
	Headers    []string      `toml:"headers"`
	Frameworks []string      `toml:"frameworks"`
	DependsOn  []string      `toml:"depends_on"`
	Script     *scriptEntry  `toml:"script"`
	Settings   settingsTable `toml:"settings"`
}

type scriptEntry struct {
	Name    string   `toml:"name"`
	Run     string   `toml:"run"`
	Inputs  []string `toml:"inputs"`
	Outputs []string `toml:"outputs"`
}

// =============================================================================
// Loading
// =============================================================================

// Load reads the manifest at path and builds the project object graph.
func Load(path string) (*pbx.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds the project object graph from manifest bytes.
func Parse(data []byte) (*pbx.Project, error) {
	var m manifestFile
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("parse manifest: project name is required")
	}
	return build(&m)
}

func build(m *manifestFile) (*pbx.Project, error) {
	mainGroup, files, err := buildGroups(m.Groups)
	if err != nil {
		return nil, err
	}

	variantNames := collectVariantNames(m)

	targets := make([]*pbx.Target, 0, len(m.Targets))
	byName := make(map[string]*pbx.Target, len(m.Targets))
	for _, te := range m.Targets {
		if _, dup := byName[te.Name]; dup {
			return nil, fmt.Errorf("%w: target %q", ErrDuplicateName, te.Name)
		}
		t, err := buildTarget(&te, files, mainGroup, variantNames)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
		byName[te.Name] = t
	}

	if err := resolveDependencies(m.Targets, byName); err != nil {
		return nil, err
	}
	if err := closure.DetectCycle(targets, targetDeps); err != nil {
		return nil, fmt.Errorf("target graph: %w", err)
	}
	expandAggregates(targets)

	p := &pbx.Project{
		Name:           m.Name,
		MainGroup:      mainGroup,
		Targets:        targets,
		Variants:       buildVariants(&m.Settings, variantNames),
		DefaultVariant: defaultVariant(m, variantNames),
	}
	return p, nil
}

// buildGroups constructs the group tree and an index of file references by
// their manifest name (group-relative path joined onto the group path).
func buildGroups(groups []groupEntry) (*pbx.Group, map[string]*pbx.FileReference, error) {
	main := &pbx.Group{SourceTree: pbx.SourceTreeGroup}
	files := make(map[string]*pbx.FileReference)

	for _, ge := range groups {
		g := &pbx.Group{
			Name:       ge.Name,
			Path:       ge.Path,
			SourceTree: pbx.SourceTreeGroup,
		}
		for _, fp := range ge.Files {
			key := path.Join(ge.Path, fp)
			if _, dup := files[key]; dup {
				return nil, nil, fmt.Errorf("%w: file %q", ErrDuplicateName, key)
			}
			f := &pbx.FileReference{
				Path:       fp,
				SourceTree: pbx.SourceTreeGroup,
				FileType:   fileType(fp),
			}
			files[key] = f
			g.Children = append(g.Children, f)
		}
		main.Children = append(main.Children, g)
	}
	return main, files, nil
}

func buildTarget(te *targetEntry, files map[string]*pbx.FileReference, mainGroup *pbx.Group, variantNames []string) (*pbx.Target, error) {
	productType := ""
	if te.Product != "" {
		pt, ok := productTypes[te.Product]
		if !ok {
			return nil, fmt.Errorf("%w: %q in target %q", ErrUnknownProduct, te.Product, te.Name)
		}
		productType = pt
	}

	t := &pbx.Target{
		Name:        te.Name,
		ProductType: productType,
		Variants:    buildVariants(&te.Settings, variantNames),
	}
	if productType != "" {
		t.ProductName = te.Name
	}

	if len(te.Headers) > 0 {
		phase := &pbx.HeadersPhase{}
		if err := addBuildFiles(&phase.Files, te.Headers, files, te.Name); err != nil {
			return nil, err
		}
		t.Phases = append(t.Phases, phase)
	}
	if len(te.Sources) > 0 {
		phase := &pbx.SourcesPhase{}
		if err := addBuildFiles(&phase.Files, te.Sources, files, te.Name); err != nil {
			return nil, err
		}
		t.Phases = append(t.Phases, phase)
	}
	if len(te.Frameworks) > 0 {
		phase := &pbx.FrameworksPhase{}
		group := frameworksGroup(mainGroup)
		for _, name := range te.Frameworks {
			f := &pbx.FileReference{
				Path:       path.Join("System/Library/Frameworks", name),
				SourceTree: pbx.SourceTreeSDK,
				FileType:   "wrapper.framework",
			}
			group.Children = append(group.Children, f)
			phase.Files = append(phase.Files, &pbx.BuildFile{File: f})
		}
		t.Phases = append(t.Phases, phase)
	}
	if te.Script != nil {
		t.Phases = append(t.Phases, &pbx.ShellScriptPhase{
			Name:        te.Script.Name,
			Script:      te.Script.Run,
			InputPaths:  te.Script.Inputs,
			OutputPaths: te.Script.Outputs,
		})
	}
	return t, nil
}

// addBuildFiles resolves file names against the group index and appends a
// build file per reference.
func addBuildFiles(dst *[]*pbx.BuildFile, names []string, files map[string]*pbx.FileReference, target string) error {
	for _, name := range names {
		f, ok := files[name]
		if !ok {
			return fmt.Errorf("%w: %q in target %q", ErrUnknownFile, name, target)
		}
		*dst = append(*dst, &pbx.BuildFile{File: f})
	}
	return nil
}

// frameworksGroup returns the main group's synthesized Frameworks child,
// creating it on first use.
func frameworksGroup(main *pbx.Group) *pbx.Group {
	for _, c := range main.Children {
		if g, ok := c.(*pbx.Group); ok && g.Name == "Frameworks" {
			return g
		}
	}
	g := &pbx.Group{Name: "Frameworks", SourceTree: pbx.SourceTreeGroup}
	main.Children = append(main.Children, g)
	return g
}

// resolveDependencies wires declared dependency names to target objects.
// Every edge is wired as a direct edge first; aggregate fan-out happens in
// a later pass once every target's own edges exist.
func resolveDependencies(entries []targetEntry, byName map[string]*pbx.Target) error {
	for _, te := range entries {
		t := byName[te.Name]
		for _, depName := range te.DependsOn {
			dep, ok := byName[depName]
			if !ok {
				return fmt.Errorf("%w: %q required by %q", ErrUnknownTarget, depName, te.Name)
			}
			t.Dependencies = append(t.Dependencies, pbx.Dependency{Target: dep})
		}
	}
	return nil
}

// expandAggregates rewrites each direct edge on an aggregate target into an
// aggregate edge fanning out to the concrete targets the aggregate exposes,
// in declared order. Runs after cycle detection, so the recursion through
// nested aggregates terminates.
func expandAggregates(targets []*pbx.Target) {
	for _, t := range targets {
		for i, d := range t.Dependencies {
			if d.Target != nil && d.Target.IsAggregate() {
				t.Dependencies[i] = pbx.Dependency{Aggregate: aggregateMembers(d.Target)}
			}
		}
	}
}

// aggregateMembers collects the concrete targets reachable from an
// aggregate through nested aggregates, deduplicated in first-seen order.
func aggregateMembers(agg *pbx.Target) []*pbx.Target {
	seen := make(map[*pbx.Target]bool)
	members := []*pbx.Target{} // non-nil so an empty aggregate stays an aggregate edge

	var visit func(t *pbx.Target)
	collect := func(t *pbx.Target) {
		if seen[t] {
			return
		}
		seen[t] = true
		if t.IsAggregate() {
			visit(t)
			return
		}
		members = append(members, t)
	}
	visit = func(t *pbx.Target) {
		for _, d := range t.Dependencies {
			if d.Target != nil {
				collect(d.Target)
				continue
			}
			for _, dt := range d.Aggregate {
				collect(dt)
			}
		}
	}
	visit(agg)
	return members
}

// targetDeps adapts target dependency edges for cycle detection.
func targetDeps(t *pbx.Target) []closure.Dep[*pbx.Target] {
	deps := make([]closure.Dep[*pbx.Target], len(t.Dependencies))
	for i, d := range t.Dependencies {
		if d.Aggregate != nil {
			deps[i] = closure.OnAll(d.Aggregate...)
		} else {
			deps[i] = closure.On(d.Target)
		}
	}
	return deps
}

// =============================================================================
// Settings Variants
// =============================================================================

// collectVariantNames returns the sorted union of every variant name
// declared anywhere in the manifest, defaulting to Debug and Release when
// nothing declares any. All configuration lists share one name set so
// variant selection behaves uniformly across targets.
func collectVariantNames(m *manifestFile) []string {
	seen := make(map[string]bool)
	for name := range m.Settings.Variant {
		seen[name] = true
	}
	for _, te := range m.Targets {
		for name := range te.Settings.Variant {
			seen[name] = true
		}
	}
	if len(seen) == 0 {
		return []string{"Debug", "Release"}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildVariants pairs one settings table with the shared variant names.
func buildVariants(st *settingsTable, names []string) []pbx.Variant {
	variants := make([]pbx.Variant, len(names))
	for i, name := range names {
		v := pbx.Variant{Name: name, Base: &st.Base}
		if overlay, ok := st.Variant[name]; ok {
			v.Overlay = &overlay
		}
		variants[i] = v
	}
	return variants
}

func defaultVariant(m *manifestFile, names []string) string {
	if m.DefaultVariant != "" {
		return m.DefaultVariant
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

// fileType infers the archive file-type tag from a file extension.
func fileType(p string) string {
	switch path.Ext(p) {
	case ".c":
		return "sourcecode.c.c"
	case ".h":
		return "sourcecode.c.h"
	case ".m":
		return "sourcecode.c.objc"
	case ".cpp", ".cc":
		return "sourcecode.cpp.cpp"
	case ".swift":
		return "sourcecode.swift"
	case ".plist":
		return "text.plist.xml"
	case ".framework":
		return "wrapper.framework"
	default:
		return "text"
	}
}
