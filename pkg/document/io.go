package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"cogentcore.org/core/math32"
)

// Read decodes a packing-result document from r.
// The reader's full contents are consumed so the content fingerprint covers
// the exact wire bytes. Read does not close r.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data)
}

// ReadFile reads and decodes a packing-result document from the file at path.
// Errors wrap the underlying cause with the file path for context.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return doc, nil
}

// Encode serializes a document back to its JSON wire form, indented for
// readability. Encode(Decode(x)) is not byte-identical to x (defaults are
// materialized), but decoding the result yields an equivalent document.
func Encode(d *Document) ([]byte, error) {
	w := wire{Container: &wireContainer{
		Width:  d.Container.Width,
		Height: d.Container.Height,
		Depth:  d.Container.Depth,
		Color:  d.Container.Color,
	}}
	for _, it := range d.Items {
		w.Items = append(w.Items, wireItem{
			ID:         it.ID,
			Name:       it.Name,
			Dimensions: triple(it.Dimensions),
			Position:   triple(it.Position),
			Rotation:   triple(it.Rotation),
			Color:      it.Color,
		})
	}
	for _, un := range d.Unpacked {
		w.Unpacked = append(w.Unpacked, wireUnpacked{
			ID:         un.ID,
			Name:       un.Name,
			Dimensions: triple(un.Dimensions),
			Color:      un.Color,
			Reason:     un.Reason,
		})
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// WriteFile encodes the document and writes it to path.
func WriteFile(path string, d *Document) error {
	data, err := Encode(d)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func triple(v math32.Vector3) []float32 {
	return []float32{v.X, v.Y, v.Z}
}
