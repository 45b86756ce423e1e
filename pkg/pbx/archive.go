package pbx

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pbxforge/pbxforge/pkg/plist"
)

// Document-level format constants. archiveVersion and objectVersion
// identify the archive dialect to its consumers and never vary per build.
const (
	archiveVersion = "1"
	objectVersion  = "46"
)

// =============================================================================
// Archive Generation API
// =============================================================================

// Generate builds the complete archive document for a project: format
// version fields, the root object's identifier, and the flat record table
// accumulated by serializing the closure reachable from the root.
//
// Each call uses a fresh serializer; nothing is cached across builds. On
// any serialization error no partial document is returned.
func Generate(p *Project) (plist.Dict, error) {
	s := NewSerializer()
	rootID, err := s.Serialize(p)
	if err != nil {
		return nil, err
	}
	return plist.Dict{
		"archiveVersion": plist.String(archiveVersion),
		"objectVersion":  plist.String(objectVersion),
		"rootObject":     plist.Ref(rootID),
		"objects":        s.Objects(),
	}, nil
}

// Marshal generates the archive for p and encodes it to plist bytes.
// Output is byte-stable for equal input graphs.
func Marshal(p *Project) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeArchiveTo(p, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile generates the archive for p and writes it to a plist file.
// The file is created with 0644 permissions; nothing is written when
// generation fails.
func WriteFile(p *Project, path string) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Write generates the archive for p and encodes it to an io.Writer.
// Use Marshal for in-memory serialization or WriteFile for files.
func Write(p *Project, w io.Writer) error {
	return writeArchiveTo(p, w)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeArchiveTo(p *Project, w io.Writer) error {
	doc, err := Generate(p)
	if err != nil {
		return err
	}
	return plist.Write(doc, w)
}
