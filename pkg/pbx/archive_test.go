package pbx

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/pbxforge/pbxforge/pkg/plist"
	"github.com/pbxforge/pbxforge/pkg/settings"
)

// demoProject builds a root grouping with two targets and a dependency
// edge between them.
func demoProject() (*Project, *Target, *Target) {
	coreSrc := &FileReference{Path: "Sources/core.c", FileType: "sourcecode.c.c"}
	appSrc := &FileReference{Path: "Sources/main.c", FileType: "sourcecode.c.c"}

	core := &Target{
		Name:        "Core",
		ProductType: ProductTypeStaticLibrary,
		ProductName: "Core",
		Phases: []BuildPhase{
			&SourcesPhase{Files: []*BuildFile{{File: coreSrc}}},
		},
		Variants: []Variant{
			{Name: "Debug", Base: &settings.Settings{ProductName: "Core"}},
			{Name: "Release", Base: &settings.Settings{ProductName: "Core"}},
		},
	}
	app := &Target{
		Name:        "App",
		ProductType: ProductTypeExecutable,
		ProductName: "App",
		Phases: []BuildPhase{
			&SourcesPhase{Files: []*BuildFile{{File: appSrc}}},
		},
		Dependencies: []Dependency{{Target: core}},
	}

	p := &Project{
		Name: "Demo",
		MainGroup: &Group{
			Children: []GroupChild{coreSrc, appSrc},
		},
		Targets:        []*Target{app, core},
		DefaultVariant: "Debug",
	}
	return p, app, core
}

// objectsTable extracts the objects table from a generated document.
func objectsTable(t *testing.T, doc plist.Dict) plist.Dict {
	t.Helper()
	objects, ok := doc["objects"].(plist.Dict)
	if !ok {
		t.Fatalf("objects is %T, want Dict", doc["objects"])
	}
	return objects
}

// recordsByISA collects record identifiers grouped by kind discriminator.
func recordsByISA(t *testing.T, objects plist.Dict) map[string][]string {
	t.Helper()
	byISA := make(map[string][]string)
	for id, v := range objects {
		rec, ok := v.(plist.Dict)
		if !ok {
			t.Fatalf("record %s is %T, want Dict", id, v)
		}
		isa, ok := rec["isa"].(plist.String)
		if !ok {
			t.Fatalf("record %s has no isa discriminator", id)
		}
		byISA[string(isa)] = append(byISA[string(isa)], id)
	}
	return byISA
}

func TestGenerateDocumentShape(t *testing.T) {
	p, _, _ := demoProject()

	doc, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if doc["archiveVersion"] != plist.String("1") {
		t.Errorf("archiveVersion = %v, want 1", doc["archiveVersion"])
	}
	if doc["objectVersion"] != plist.String("46") {
		t.Errorf("objectVersion = %v, want 46", doc["objectVersion"])
	}

	root, ok := doc["rootObject"].(plist.Ref)
	if !ok {
		t.Fatalf("rootObject is %T, want Ref", doc["rootObject"])
	}
	objects := objectsTable(t, doc)
	rootRec, ok := objects[string(root)].(plist.Dict)
	if !ok {
		t.Fatalf("rootObject %s does not resolve inside objects", root)
	}
	if rootRec["isa"] != plist.String("PBXProject") {
		t.Errorf("root record isa = %v, want PBXProject", rootRec["isa"])
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	p, _, _ := demoProject()

	doc, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	objects := objectsTable(t, doc)
	byISA := recordsByISA(t, objects)

	if got := len(byISA["PBXNativeTarget"]); got != 2 {
		t.Fatalf("native target records = %d, want 2", got)
	}

	// The dependency edge is a distinct wrapper record referencing the
	// dependency target's identifier.
	wrappers := byISA["PBXTargetDependency"]
	if len(wrappers) != 1 {
		t.Fatalf("dependency wrappers = %d, want 1", len(wrappers))
	}
	wrapper := objects[wrappers[0]].(plist.Dict)

	var coreID, appID string
	for _, id := range byISA["PBXNativeTarget"] {
		rec := objects[id].(plist.Dict)
		switch rec["name"] {
		case plist.String("Core"):
			coreID = id
		case plist.String("App"):
			appID = id
		}
	}
	if coreID == "" || appID == "" {
		t.Fatalf("missing target records: core=%q app=%q", coreID, appID)
	}
	if wrapper["target"] != plist.Ref(coreID) {
		t.Errorf("wrapper target = %v, want Ref(%s)", wrapper["target"], coreID)
	}

	// Dependencies appear before dependents in the project's target list.
	proj := objects[string(doc["rootObject"].(plist.Ref))].(plist.Dict)
	targets := proj["targets"].(plist.Array)
	if len(targets) != 2 || targets[0] != plist.Ref(coreID) || targets[1] != plist.Ref(appID) {
		t.Errorf("target order = %v, want [%s %s]", targets, coreID, appID)
	}
}

func TestGenerateRemovalStability(t *testing.T) {
	p, _, core := demoProject()

	full, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate full: %v", err)
	}

	// Drop the dependent target (emitted last) and rebuild from the same
	// object graph.
	p.Targets = []*Target{core}

	reduced, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate reduced: %v", err)
	}

	fullObjects := objectsTable(t, full)
	reducedObjects := objectsTable(t, reduced)

	if len(reducedObjects) >= len(fullObjects) {
		t.Fatalf("reduced table has %d records, full has %d", len(reducedObjects), len(fullObjects))
	}

	rootID := string(full["rootObject"].(plist.Ref))
	for id, rec := range reducedObjects {
		if id == rootID {
			continue // the project record legitimately lost one target ref
		}
		fullRec, ok := fullObjects[id]
		if !ok {
			t.Errorf("record %s appeared only after removal", id)
			continue
		}
		if !reflect.DeepEqual(rec, fullRec) {
			t.Errorf("record %s changed after removal:\n%v\n%v", id, rec, fullRec)
		}
	}

	// Exactly the dependent target's subtree disappeared: the target, its
	// configuration list, its sources phase, its build file, and the
	// dependency wrapper.
	removed := len(fullObjects) - len(reducedObjects)
	if removed != 5 {
		t.Errorf("removed %d records, want 5", removed)
	}
}

func TestGenerateNoOrphansNoDuplicates(t *testing.T) {
	p, _, _ := demoProject()

	doc, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	objects := objectsTable(t, doc)

	// Every Ref inside the document resolves to a record in the table.
	var walk func(v plist.Value)
	walk = func(v plist.Value) {
		switch t2 := v.(type) {
		case plist.Ref:
			if _, ok := objects[string(t2)]; !ok {
				t.Errorf("dangling reference %s", t2)
			}
		case plist.Array:
			for _, item := range t2 {
				walk(item)
			}
		case plist.Dict:
			for _, item := range t2 {
				walk(item)
			}
		}
	}
	walk(doc)

	// No sentinel (empty) records survive a successful build.
	for id, v := range objects {
		if rec, ok := v.(plist.Dict); ok && len(rec) == 0 {
			t.Errorf("record %s is an unfinished sentinel", id)
		}
	}
}

func TestGenerateDiamondTargetOrder(t *testing.T) {
	a := &Target{Name: "A", ProductType: ProductTypeStaticLibrary}
	b := &Target{Name: "B", ProductType: ProductTypeStaticLibrary, Dependencies: []Dependency{{Target: a}}}
	c := &Target{Name: "C", ProductType: ProductTypeStaticLibrary, Dependencies: []Dependency{{Target: a}}}
	d := &Target{Name: "D", ProductType: ProductTypeExecutable, Dependencies: []Dependency{{Target: b}, {Target: c}}}

	p := &Project{Name: "Diamond", Targets: []*Target{d, c, b, a}}

	doc, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	objects := objectsTable(t, doc)
	proj := objects[string(doc["rootObject"].(plist.Ref))].(plist.Dict)

	var names []string
	for _, ref := range proj["targets"].(plist.Array) {
		rec := objects[string(ref.(plist.Ref))].(plist.Dict)
		names = append(names, string(rec["name"].(plist.String)))
	}

	want := []string{"A", "B", "C", "D"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("target order = %v, want %v", names, want)
	}
}

func TestMarshalDeterministicAcrossConstructionOrder(t *testing.T) {
	build := func(reversed bool) *Project {
		core := &Target{Name: "Core", ProductType: ProductTypeStaticLibrary}
		app := &Target{Name: "App", ProductType: ProductTypeExecutable, Dependencies: []Dependency{{Target: core}}}
		targets := []*Target{app, core}
		if reversed {
			targets = []*Target{core, app}
		}
		return &Project{Name: "Demo", Targets: targets}
	}

	first, err := Marshal(build(false))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(build(true))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("output depends on target declaration order:\n%s\n---\n%s", first, second)
	}
}

func TestGenerateAggregateDependencyFanOut(t *testing.T) {
	a := &Target{Name: "A", ProductType: ProductTypeStaticLibrary}
	b := &Target{Name: "B", ProductType: ProductTypeStaticLibrary}
	app := &Target{
		Name:         "App",
		ProductType:  ProductTypeExecutable,
		Dependencies: []Dependency{{Aggregate: []*Target{a, b}}},
	}
	p := &Project{Name: "Fan", Targets: []*Target{app, a, b}}

	doc, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	byISA := recordsByISA(t, objectsTable(t, doc))

	// One wrapper per resolved member of the aggregate edge.
	if got := len(byISA["PBXTargetDependency"]); got != 2 {
		t.Errorf("dependency wrappers = %d, want 2", got)
	}
}

func TestGenerateVariantWrappers(t *testing.T) {
	base := &settings.Settings{HeaderSearchPaths: []string{"/base"}}
	debug := &settings.Settings{HeaderSearchPaths: []string{settings.Inherited, "/debug"}}

	target := &Target{
		Name:        "Lib",
		ProductType: ProductTypeStaticLibrary,
		Variants: []Variant{
			{Name: "Debug", Base: base, Overlay: debug},
			{Name: "Release", Base: base},
		},
	}
	p := &Project{Name: "Demo", Targets: []*Target{target}}

	doc, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	objects := objectsTable(t, doc)
	byISA := recordsByISA(t, objects)

	// One wrapper per settings variant, plus the project's own (empty)
	// configuration list contributes none.
	if got := len(byISA["XCBuildConfiguration"]); got != 2 {
		t.Fatalf("build configuration wrappers = %d, want 2", got)
	}

	var debugRec plist.Dict
	for _, id := range byISA["XCBuildConfiguration"] {
		rec := objects[id].(plist.Dict)
		if rec["name"] == plist.String("Debug") {
			debugRec = rec
		}
	}
	if debugRec == nil {
		t.Fatal("missing Debug configuration record")
	}

	merged := debugRec["buildSettings"].(plist.Dict)
	want := plist.Strings([]string{"/base", "/debug"})
	if !reflect.DeepEqual(merged["HEADER_SEARCH_PATHS"], plist.Value(want)) {
		t.Errorf("merged HEADER_SEARCH_PATHS = %v, want %v", merged["HEADER_SEARCH_PATHS"], want)
	}
}
