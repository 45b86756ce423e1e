// Package pbx builds Xcode project archives from an in-memory object graph.
//
// # Overview
//
// A project archive is a flat, string-keyed table of typed records whose
// relationships are expressed through generated identifiers. The in-memory
// graph expresses the same relationships through reference identity: two
// structurally identical objects are distinct if they are different
// instances. The [Serializer] translates between the two worlds, assigning
// each object exactly one identifier and emitting each owned object exactly
// once.
//
// # Ownership
//
// Every relationship in the graph is either owning or referencing. An owner
// emits the objects it owns (via [Serializer.Serialize], producing both the
// record and a reference); everything else resolves identifiers only (via
// [Serializer.IDOf], producing a reference without emitting). Getting this
// wrong either orphans a record or raises [ErrDuplicateEmission].
//
// # Determinism
//
// For a fixed graph and fixed declaration order, output is byte-stable:
// targets are emitted in dependency-closure order with roots pre-sorted by
// name, and the encoder sorts all record keys.
//
// # Basic Usage
//
//	lib := &pbx.Target{Name: "Core", ProductType: pbx.ProductTypeLibrary}
//	app := &pbx.Target{
//	    Name:         "App",
//	    ProductType:  pbx.ProductTypeExecutable,
//	    Dependencies: []pbx.Dependency{{Target: lib}},
//	}
//	project := &pbx.Project{Name: "Demo", Targets: []*pbx.Target{app, lib}}
//	err := pbx.WriteFile(project, "Demo.xcodeproj/project.pbxproj")
//
// A Serializer serves exactly one archive build; build state is discarded
// afterwards and never shared between builds.
package pbx
