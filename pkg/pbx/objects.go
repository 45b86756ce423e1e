package pbx

import (
	"sort"

	"github.com/pbxforge/pbxforge/pkg/closure"
	"github.com/pbxforge/pbxforge/pkg/plist"
	"github.com/pbxforge/pbxforge/pkg/settings"
)

// SourceTree is the base a file or group path is resolved against.
type SourceTree string

const (
	// SourceTreeGroup resolves the path relative to the enclosing group.
	SourceTreeGroup SourceTree = "<group>"
	// SourceTreeRoot resolves the path relative to the project directory.
	SourceTreeRoot SourceTree = "SOURCE_ROOT"
	// SourceTreeAbsolute marks an absolute path.
	SourceTreeAbsolute SourceTree = "<absolute>"
	// SourceTreeBuildDir resolves the path inside the build products
	// directory. Used for product references.
	SourceTreeBuildDir SourceTree = "BUILT_PRODUCTS_DIR"
	// SourceTreeSDK resolves the path inside the active SDK. Used for
	// system framework references.
	SourceTreeSDK SourceTree = "SDKROOT"
)

// Product types for native targets.
const (
	ProductTypeExecutable    = "com.apple.product-type.tool"
	ProductTypeLibrary       = "com.apple.product-type.library.dynamic"
	ProductTypeStaticLibrary = "com.apple.product-type.library.static"
	ProductTypeFramework     = "com.apple.product-type.framework"
	ProductTypeUnitTest      = "com.apple.product-type.bundle.unit-test"
	ProductTypeApplication   = "com.apple.product-type.application"
)

// customID carries the optional caller-assigned archive identifier shared
// by all identity-bearing record kinds.
type customID struct {
	// ID pins the object's archive identifier. Leave empty for an
	// auto-assigned OBJ_n identifier.
	ID string
}

func (c customID) objectID() string { return c.ID }

// put adds a record field, omitting empty values.
func put(d plist.Dict, key string, v plist.Value) {
	if plist.IsEmpty(v) {
		return
	}
	d[key] = v
}

// =============================================================================
// Settings Variants
// =============================================================================

// Variant is one named settings layer pair: a base record overlaid by a
// variant-specific record. The merged result is emitted as a build
// configuration wrapper when the owning target or project is serialized.
type Variant struct {
	Name    string
	Base    *settings.Settings
	Overlay *settings.Settings
}

// values projects a possibly-nil settings record.
func values(s *settings.Settings) plist.Value {
	if s == nil {
		return nil
	}
	return s.Values()
}

// =============================================================================
// Project
// =============================================================================

// Project is the root grouping of an archive. It owns the main group tree,
// its own configuration list, and every declared target.
type Project struct {
	customID
	Name           string
	MainGroup      *Group
	Targets        []*Target
	Variants       []Variant
	DefaultVariant string
}

func (p *Project) ISA() string { return "PBXProject" }

func (p *Project) record(s *Serializer) (plist.Dict, error) {
	rec := plist.Dict{}

	cfgID, err := s.Serialize(&ConfigurationList{Variants: p.Variants, Default: p.DefaultVariant})
	if err != nil {
		return nil, err
	}
	rec["buildConfigurationList"] = plist.Ref(cfgID)

	if p.MainGroup != nil {
		groupID, err := s.Serialize(p.MainGroup)
		if err != nil {
			return nil, err
		}
		rec["mainGroup"] = plist.Ref(groupID)
	}

	targets, err := p.emitTargets(s)
	if err != nil {
		return nil, err
	}
	rec["targets"] = targets
	return rec, nil
}

// emitTargets serializes the project's declared targets in dependency
// order: closure order over the target graph with roots pre-sorted by
// display name, restricted to the declared targets. The name sort keeps
// output stable across runs that construct the same targets in a
// different order.
func (p *Project) emitTargets(s *Serializer) (plist.Array, error) {
	roots := make([]*Target, len(p.Targets))
	copy(roots, p.Targets)
	sort.SliceStable(roots, func(i, j int) bool { return roots[i].Name < roots[j].Name })

	declared := make(map[*Target]bool, len(p.Targets))
	for _, t := range p.Targets {
		declared[t] = true
	}

	refs := plist.Array{}
	for _, t := range closure.Closure(roots, targetEdges) {
		if !declared[t] {
			continue
		}
		id, err := s.Serialize(t)
		if err != nil {
			return nil, err
		}
		refs = append(refs, plist.Ref(id))
	}
	return refs, nil
}

// =============================================================================
// Groups and File References
// =============================================================================

// GroupChild is a member of a group tree: a nested [Group] or a
// [FileReference].
type GroupChild interface {
	Object
	isGroupChild()
}

// Group is a named grouping of file references and nested groups.
// A group owns its children: serializing the group emits them.
type Group struct {
	customID
	Name       string
	Path       string
	SourceTree SourceTree
	Children   []GroupChild
}

func (g *Group) ISA() string   { return "PBXGroup" }
func (g *Group) isGroupChild() {}

func (g *Group) record(s *Serializer) (plist.Dict, error) {
	children := plist.Array{}
	for _, c := range g.Children {
		id, err := s.Serialize(c)
		if err != nil {
			return nil, err
		}
		children = append(children, plist.Ref(id))
	}

	rec := plist.Dict{"children": children}
	put(rec, "name", plist.String(g.Name))
	put(rec, "path", plist.String(g.Path))
	rec["sourceTree"] = plist.String(string(g.sourceTree()))
	return rec, nil
}

func (g *Group) sourceTree() SourceTree {
	if g.SourceTree == "" {
		return SourceTreeGroup
	}
	return g.SourceTree
}

// FileReference points at one file on disk or in the build directory.
// It is owned by exactly one group; build files and targets reference it
// by identifier only.
type FileReference struct {
	customID
	Name       string
	Path       string
	SourceTree SourceTree
	FileType   string // last known file type, e.g. "sourcecode.c.c"
}

func (f *FileReference) ISA() string   { return "PBXFileReference" }
func (f *FileReference) isGroupChild() {}

func (f *FileReference) record(_ *Serializer) (plist.Dict, error) {
	rec := plist.Dict{}
	put(rec, "name", plist.String(f.Name))
	put(rec, "path", plist.String(f.Path))
	put(rec, "lastKnownFileType", plist.String(f.FileType))
	tree := f.SourceTree
	if tree == "" {
		tree = SourceTreeGroup
	}
	rec["sourceTree"] = plist.String(string(tree))
	return rec, nil
}

// =============================================================================
// Targets
// =============================================================================

// Dependency is one declared dependency edge of a target: either a direct
// edge on another target, or an aggregate edge that fans out to every
// target the aggregate exposes.
type Dependency struct {
	Target    *Target
	Aggregate []*Target
}

// targets returns the resolved dependency targets in declared order.
func (d Dependency) targets() []*Target {
	if d.Aggregate != nil {
		return d.Aggregate
	}
	return []*Target{d.Target}
}

// targetEdges adapts a target's declared dependencies to closure edges.
func targetEdges(t *Target) []closure.Dep[*Target] {
	deps := make([]closure.Dep[*Target], len(t.Dependencies))
	for i, d := range t.Dependencies {
		if d.Aggregate != nil {
			deps[i] = closure.OnAll(d.Aggregate...)
		} else {
			deps[i] = closure.On(d.Target)
		}
	}
	return deps
}

// Target is one buildable unit: a native target producing a product, or an
// aggregate target (empty ProductType) that only groups dependencies.
//
// A target owns its build phases, its configuration list, and the
// dependency wrappers synthesized during emission. It references its
// product file and its dependency targets by identifier only; the project
// owns the targets, the group tree owns the product reference.
type Target struct {
	customID
	Name           string
	ProductType    string // empty for aggregate targets
	ProductName    string
	Product        *FileReference
	Phases         []BuildPhase
	Dependencies   []Dependency
	Variants       []Variant
	DefaultVariant string
}

// IsAggregate reports whether the target produces nothing and only
// aggregates dependencies.
func (t *Target) IsAggregate() bool { return t.ProductType == "" }

func (t *Target) ISA() string {
	if t.IsAggregate() {
		return "PBXAggregateTarget"
	}
	return "PBXNativeTarget"
}

func (t *Target) record(s *Serializer) (plist.Dict, error) {
	rec := plist.Dict{"name": plist.String(t.Name)}

	cfgID, err := s.Serialize(&ConfigurationList{Variants: t.Variants, Default: t.DefaultVariant})
	if err != nil {
		return nil, err
	}
	rec["buildConfigurationList"] = plist.Ref(cfgID)

	phases := plist.Array{}
	for _, p := range t.Phases {
		id, err := s.Serialize(p)
		if err != nil {
			return nil, err
		}
		phases = append(phases, plist.Ref(id))
	}
	rec["buildPhases"] = phases

	// One identity-bearing wrapper per resolved dependency edge. The
	// wrapper exists only to give the edge the identity the archive
	// format requires; it is owned here and referenced nowhere else.
	deps := plist.Array{}
	for _, d := range t.Dependencies {
		for _, dt := range d.targets() {
			id, err := s.Serialize(&TargetDependency{Target: dt})
			if err != nil {
				return nil, err
			}
			deps = append(deps, plist.Ref(id))
		}
	}
	rec["dependencies"] = deps

	put(rec, "productName", plist.String(t.ProductName))
	put(rec, "productType", plist.String(t.ProductType))
	if t.Product != nil {
		rec["productReference"] = plist.Ref(s.IDOf(t.Product))
	}
	return rec, nil
}

// TargetDependency wraps one dependency edge in an identity-bearing record.
// It references the dependency target; it owns nothing.
type TargetDependency struct {
	Target *Target
}

func (d *TargetDependency) ISA() string      { return "PBXTargetDependency" }
func (d *TargetDependency) objectID() string { return "" }

func (d *TargetDependency) record(s *Serializer) (plist.Dict, error) {
	return plist.Dict{"target": plist.Ref(s.IDOf(d.Target))}, nil
}

// =============================================================================
// Build Phases and Build Files
// =============================================================================

// BuildPhase is one step of a target's build: headers, sources,
// frameworks, file copying, or a shell script.
type BuildPhase interface {
	Object
	isBuildPhase()
}

// BuildFile attaches a file reference to a build phase. The phase owns the
// build file; the file reference itself is owned by the group tree and
// only referenced here.
type BuildFile struct {
	customID
	File *FileReference
}

func (b *BuildFile) ISA() string { return "PBXBuildFile" }

func (b *BuildFile) record(s *Serializer) (plist.Dict, error) {
	return plist.Dict{"fileRef": plist.Ref(s.IDOf(b.File))}, nil
}

// filesRecord serializes a phase's owned build files into its record.
func filesRecord(s *Serializer, files []*BuildFile) (plist.Dict, error) {
	refs := plist.Array{}
	for _, f := range files {
		id, err := s.Serialize(f)
		if err != nil {
			return nil, err
		}
		refs = append(refs, plist.Ref(id))
	}
	return plist.Dict{"files": refs}, nil
}

// HeadersPhase installs header files.
type HeadersPhase struct {
	customID
	Files []*BuildFile
}

func (*HeadersPhase) ISA() string   { return "PBXHeadersBuildPhase" }
func (*HeadersPhase) isBuildPhase() {}

func (p *HeadersPhase) record(s *Serializer) (plist.Dict, error) {
	return filesRecord(s, p.Files)
}

// SourcesPhase compiles source files.
type SourcesPhase struct {
	customID
	Files []*BuildFile
}

func (*SourcesPhase) ISA() string   { return "PBXSourcesBuildPhase" }
func (*SourcesPhase) isBuildPhase() {}

func (p *SourcesPhase) record(s *Serializer) (plist.Dict, error) {
	return filesRecord(s, p.Files)
}

// FrameworksPhase links frameworks and libraries.
type FrameworksPhase struct {
	customID
	Files []*BuildFile
}

func (*FrameworksPhase) ISA() string   { return "PBXFrameworksBuildPhase" }
func (*FrameworksPhase) isBuildPhase() {}

func (p *FrameworksPhase) record(s *Serializer) (plist.Dict, error) {
	return filesRecord(s, p.Files)
}

// CopyFilesPhase copies files into the product at build time.
type CopyFilesPhase struct {
	customID
	Files            []*BuildFile
	DstPath          string
	DstSubfolderSpec string
}

func (*CopyFilesPhase) ISA() string   { return "PBXCopyFilesBuildPhase" }
func (*CopyFilesPhase) isBuildPhase() {}

func (p *CopyFilesPhase) record(s *Serializer) (plist.Dict, error) {
	rec, err := filesRecord(s, p.Files)
	if err != nil {
		return nil, err
	}
	put(rec, "dstPath", plist.String(p.DstPath))
	put(rec, "dstSubfolderSpec", plist.String(p.DstSubfolderSpec))
	return rec, nil
}

// ShellScriptPhase runs a shell script.
type ShellScriptPhase struct {
	customID
	Name        string
	Script      string
	InputPaths  []string
	OutputPaths []string
}

func (*ShellScriptPhase) ISA() string   { return "PBXShellScriptBuildPhase" }
func (*ShellScriptPhase) isBuildPhase() {}

func (p *ShellScriptPhase) record(_ *Serializer) (plist.Dict, error) {
	rec := plist.Dict{
		"files":       plist.Array{},
		"shellPath":   plist.String("/bin/sh"),
		"shellScript": plist.String(p.Script),
	}
	put(rec, "name", plist.String(p.Name))
	put(rec, "inputPaths", plist.Strings(p.InputPaths))
	put(rec, "outputPaths", plist.Strings(p.OutputPaths))
	return rec, nil
}

// =============================================================================
// Configuration Lists and Build Configurations
// =============================================================================

// ConfigurationList wraps a target's or project's settings variants in the
// identity-bearing list record the archive format requires. It owns one
// build configuration wrapper per variant.
type ConfigurationList struct {
	customID
	Variants []Variant
	Default  string
}

func (*ConfigurationList) ISA() string { return "XCConfigurationList" }

func (l *ConfigurationList) record(s *Serializer) (plist.Dict, error) {
	configs := plist.Array{}
	for _, v := range l.Variants {
		merged, err := settings.Merge(values(v.Base), values(v.Overlay))
		if err != nil {
			return nil, err
		}
		id, err := s.Serialize(&BuildConfiguration{Name: v.Name, Settings: merged})
		if err != nil {
			return nil, err
		}
		configs = append(configs, plist.Ref(id))
	}

	rec := plist.Dict{
		"buildConfigurations":           configs,
		"defaultConfigurationIsVisible": plist.String("0"),
	}
	put(rec, "defaultConfigurationName", plist.String(l.Default))
	return rec, nil
}

// BuildConfiguration is the emitted form of one settings variant: the
// variant name plus the merged effective settings. Constructed transiently
// by the configuration list that owns it.
type BuildConfiguration struct {
	Name     string
	Settings plist.Dict
}

func (*BuildConfiguration) ISA() string      { return "XCBuildConfiguration" }
func (*BuildConfiguration) objectID() string { return "" }

func (c *BuildConfiguration) record(_ *Serializer) (plist.Dict, error) {
	buildSettings := c.Settings
	if buildSettings == nil {
		buildSettings = plist.Dict{}
	}
	return plist.Dict{
		"name":          plist.String(c.Name),
		"buildSettings": buildSettings,
	}, nil
}
