// Package pkg provides the core libraries for pbxforge archive generation.
//
// # Overview
//
// pbxforge turns a declarative TOML manifest into a deterministic IDE
// project archive: an OpenStep-style property list holding a flat table of
// identity-bearing records linked by identifiers. The pkg directory is
// organized by layer:
//
//  1. [plist] - The value tree (strings, arrays, dicts, references) and its
//     deterministic OpenStep encoding
//  2. [closure] - Generic topological closure and cycle detection over
//     reference-based dependency graphs
//  3. [settings] - The build-settings record, normalization of
//     space-separated values, and the layered base + overlay merge
//  4. [pbx] - The object model (projects, targets, groups, phases), the
//     identity serializer, and archive generation
//  5. [manifest] - TOML manifest loading and object-graph construction
//  6. [buildinfo] - Build-time version information
//
// # Architecture
//
// The typical data flow through pbxforge:
//
//	TOML manifest
//	     ↓
//	[manifest] package (parse, validate, build object graph)
//	     ↓
//	[pbx] package (assign identities, emit records, order targets)
//	     ↓
//	[settings] package (merge layered settings per variant)
//	     ↓
//	[plist] package (encode the document deterministically)
//	     ↓
//	project.pbxproj
//
// # Quick Start
//
// Build an archive from an in-memory object graph:
//
//	core := &pbx.Target{Name: "Core", ProductType: pbx.ProductTypeStaticLibrary}
//	app := &pbx.Target{
//	    Name:         "App",
//	    ProductType:  pbx.ProductTypeExecutable,
//	    Dependencies: []pbx.Dependency{{Target: core}},
//	}
//	p := &pbx.Project{Name: "Demo", Targets: []*pbx.Target{app, core}}
//
//	data, err := pbx.Marshal(p)
//
// Or load a manifest from disk:
//
//	p, err := manifest.Load("project.toml")
//	if err != nil {
//	    return err
//	}
//	err = pbx.WriteFile(p, "project.pbxproj")
//
// Equal object graphs always marshal to identical bytes; record identity
// follows Go object identity, not structural equality.
//
// [plist]: https://pkg.go.dev/github.com/pbxforge/pbxforge/pkg/plist
// [closure]: https://pkg.go.dev/github.com/pbxforge/pbxforge/pkg/closure
// [settings]: https://pkg.go.dev/github.com/pbxforge/pbxforge/pkg/settings
// [pbx]: https://pkg.go.dev/github.com/pbxforge/pbxforge/pkg/pbx
// [manifest]: https://pkg.go.dev/github.com/pbxforge/pbxforge/pkg/manifest
// [buildinfo]: https://pkg.go.dev/github.com/pbxforge/pbxforge/pkg/buildinfo
package pkg
