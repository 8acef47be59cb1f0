// Package geojson holds the feature collection document model, the
// coordinate depth normalizer and the geometry engine abstraction.
package geojson

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// Document is a decoded GeoJSON feature collection. It is kept as a generic
// map so every top-level field besides "features" survives a repair run
// untouched, whatever it is.
type Document map[string]any

// Load reads and decodes a feature collection from disk.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geojson: read %s", path)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "geojson: parse %s", path)
	}

	return doc, nil
}

// Features returns the document's feature sequence, or nil when the
// "features" key is absent or not a sequence.
func (d Document) Features() []any {
	features, _ := d["features"].([]any)
	return features
}

// SetFeatures replaces the document's feature sequence.
func (d Document) SetFeatures(features []any) {
	d["features"] = features
}

// Write serializes the document to path as indented JSON. Non-ASCII
// characters are written literally, not escaped.
func (d Document) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "geojson: create %s", path)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any(d)); err != nil {
		f.Close()
		return eris.Wrapf(err, "geojson: write %s", path)
	}

	return eris.Wrapf(f.Close(), "geojson: close %s", path)
}
