package settings

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pbxforge/pbxforge/pkg/plist"
)

// Inherited is the splice marker: a list-valued overlay whose first element
// is this literal extends the base list instead of replacing it.
const Inherited = "$(inherited)"

var (
	// ErrMalformedSettings is returned by [Merge] when a side of the merge
	// is not a mapping. This is a contract violation by the caller that
	// constructed the settings value, not a normal runtime condition.
	ErrMalformedSettings = errors.New("settings value is not a mapping")

	// ErrUnrepresentableValue is returned by [Merge] when a settings field
	// holds a value outside the supported shapes (single string or list of
	// strings).
	ErrUnrepresentableValue = errors.New("unrepresentable settings value")
)

// Merge combines a base settings mapping with an overlay mapping into one
// effective mapping. Per field present in the overlay:
//
//   - If the field is list-valued on both sides and the overlay list starts
//     with the [Inherited] marker, the merged value is the base list
//     followed by the overlay list with the marker dropped.
//   - Otherwise the overlay value replaces the base value entirely.
//
// Fields present only in the base pass through unchanged; fields present on
// neither side are absent from the result. Space-separated fields are
// normalized before merging (a no-op for values already normalized by
// [Settings.Values]).
//
// A nil side is treated as an empty mapping. Any other non-Dict side
// returns ErrMalformedSettings; a field value that is neither String nor
// Array of String returns ErrUnrepresentableValue.
func Merge(base, overlay plist.Value) (plist.Dict, error) {
	baseDict, err := asDict(base)
	if err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	overlayDict, err := asDict(overlay)
	if err != nil {
		return nil, fmt.Errorf("overlay: %w", err)
	}

	merged := make(plist.Dict, len(baseDict)+len(overlayDict))
	for name, v := range baseDict {
		nv, err := checkField(name, v)
		if err != nil {
			return nil, err
		}
		merged[name] = nv
	}

	for name, v := range overlayDict {
		nv, err := checkField(name, v)
		if err != nil {
			return nil, err
		}
		if spliced, ok := splice(merged[name], nv); ok {
			merged[name] = spliced
			continue
		}
		merged[name] = nv
	}

	return merged, nil
}

// splice applies the inherited-marker rule. It returns the spliced list and
// true only when both values are lists and the overlay starts with the
// marker.
func splice(base, overlay plist.Value) (plist.Array, bool) {
	baseList, ok := base.(plist.Array)
	if !ok {
		return nil, false
	}
	overlayList, ok := overlay.(plist.Array)
	if !ok || len(overlayList) == 0 || overlayList[0] != plist.String(Inherited) {
		return nil, false
	}
	return append(slices.Clone(baseList), overlayList[1:]...), true
}

// checkField validates a field value's shape and normalizes list values of
// space-separated fields. The returned value is a copy whenever
// normalization changes anything; the input is never mutated.
func checkField(name string, v plist.Value) (plist.Value, error) {
	switch t := v.(type) {
	case plist.String:
		return t, nil
	case plist.Array:
		ss := make([]string, len(t))
		for i, item := range t {
			s, ok := item.(plist.String)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] is %T", ErrUnrepresentableValue, name, i, item)
			}
			ss[i] = string(s)
		}
		if spaceSeparated[name] {
			return plist.Strings(NormalizeList(ss)), nil
		}
		return t, nil
	default:
		return nil, fmt.Errorf("%w: %s is %T", ErrUnrepresentableValue, name, v)
	}
}

// asDict coerces a merge side to a mapping. nil means "no settings here"
// and is treated as empty.
func asDict(v plist.Value) (plist.Dict, error) {
	switch t := v.(type) {
	case nil:
		return plist.Dict{}, nil
	case plist.Dict:
		return t, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrMalformedSettings, v)
	}
}
