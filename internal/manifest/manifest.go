package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gallery-builder/internal/gallery"
)

// Encode serializes entries to the manifest format: a UTF-8 JSON array with
// two-space indentation and stable field order (name, img, href, optional
// thumb). HTML escaping is disabled so non-ASCII album names survive intact.
// Output is byte-identical for identical input.
func Encode(entries []gallery.Entry) ([]byte, error) {
	if entries == nil {
		entries = []gallery.Entry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Write encodes entries and writes the manifest to path.
func Write(path string, entries []gallery.Entry) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}
