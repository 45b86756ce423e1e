package pbx

import (
	"fmt"

	"github.com/pbxforge/pbxforge/pkg/plist"
)

// Object is one node in the project graph. The kind set is closed: only the
// record types declared in this package implement it.
//
// Object identity is reference identity - the serializer keys its state on
// the object instance, so two structurally equal objects receive distinct
// identifiers.
type Object interface {
	// ISA returns the record-kind discriminator emitted into the archive.
	ISA() string

	// objectID returns the caller-assigned stable identifier, or "" when
	// the object takes an auto-assigned one.
	objectID() string

	// record builds the object's archive record. Owned children are
	// serialized via Serializer.Serialize; merely referenced objects are
	// resolved via Serializer.IDOf.
	record(s *Serializer) (plist.Dict, error)
}

// Serializer assigns identifiers to graph objects and accumulates the
// identifier-to-record table of one archive build.
//
// A Serializer serves a single synchronous build: it is not safe for
// concurrent use, and its state must not be reused for a second archive.
type Serializer struct {
	assigned map[Object]string
	table    plist.Dict
	next     int
}

// NewSerializer returns a Serializer with empty assignment and record
// tables.
func NewSerializer() *Serializer {
	return &Serializer{
		assigned: make(map[Object]string),
		table:    plist.Dict{},
	}
}

// IDOf returns the identifier assigned to o, allocating one on first
// reference. Auto identifiers are handed out in first-reference order as
// OBJ_1, OBJ_2, and so on; an object declaring a custom identifier keeps
// it. IDOf is idempotent and never emits a record.
//
// Identifier uniqueness is global across the archive. Custom identifiers
// are trusted: the caller assigning them is responsible for keeping them
// distinct from each other (auto identifiers cannot collide with sensible
// custom ones).
func (s *Serializer) IDOf(o Object) string {
	if id, ok := s.assigned[o]; ok {
		return id
	}
	id := o.objectID()
	if id == "" {
		s.next++
		id = fmt.Sprintf("OBJ_%d", s.next)
	}
	s.assigned[o] = id
	return id
}

// Serialize emits o's record into the table and returns its identifier.
// Record construction may recursively serialize owned children and resolve
// references, in declaration order.
//
// Returns ErrDuplicateEmission if o was already serialized in this build.
// The check fires before record construction completes, so a record that
// re-enters Serialize on its own object fails instead of recursing forever.
func (s *Serializer) Serialize(o Object) (string, error) {
	id := s.IDOf(o)
	if _, emitted := s.table[id]; emitted {
		return "", fmt.Errorf("%w: %s %q", ErrDuplicateEmission, o.ISA(), id)
	}

	// In-progress sentinel; overwritten with the finished record below.
	s.table[id] = plist.Dict{}

	rec, err := o.record(s)
	if err != nil {
		return "", err
	}
	rec["isa"] = plist.String(o.ISA())
	s.table[id] = rec
	return id, nil
}

// Objects returns the accumulated identifier-to-record table.
// The returned dict is the serializer's own table; callers consume it once
// and discard the serializer.
func (s *Serializer) Objects() plist.Dict { return s.table }
