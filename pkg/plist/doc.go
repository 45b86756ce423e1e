// Package plist provides the tagged value tree and the deterministic
// OpenStep-style property-list encoder used by project archives.
//
// # Value Tree
//
// A [Value] is one of four variants: [String] for arbitrary text, [Array]
// for ordered sequences, [Dict] for string-keyed mappings, and [Ref] for
// identifier cross-references. Refs and Strings are both rendered as quoted
// text; the distinction matters to producers, which use Ref exclusively for
// identifiers that resolve elsewhere in the same document.
//
// # Determinism
//
// Dict key order is irrelevant to document semantics but must be stable for
// reproducible output, so the encoder always emits keys in sorted order.
// Two structurally equal values encode to identical bytes.
//
// # Basic Usage
//
//	doc := plist.Dict{
//	    "archiveVersion": plist.String("1"),
//	    "rootObject":     plist.Ref("OBJ_1"),
//	}
//	data, err := plist.Marshal(doc)
package plist
