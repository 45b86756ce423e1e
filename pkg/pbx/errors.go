package pbx

import "errors"

// ErrDuplicateEmission is returned when the same object is asked to be
// fully serialized twice within one archive build. This also catches direct
// reference cycles, where an object's record construction recursively asks
// to serialize the object itself. The error is terminal: silently picking
// one emission would hide a modeling bug upstream.
var ErrDuplicateEmission = errors.New("object serialized twice")
