// Package shapefile renders a repaired feature collection as an ESRI
// shapefile bundled with its GeoJSON in a single zip.
package shapefile

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geom"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"

	gj "github.com/bsaid97/go-geojson-repair/geojson"
)

// wgs84WKT is written as the .prj companion; repaired collections carry no
// CRS of their own so WGS84 is assumed.
const wgs84WKT = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["Degree",0.017453292519943295]]`

// ExportZip builds a zip holding baseName.geojson plus a polygon shapefile
// (shp/shx/dbf/prj) of the collection's Polygon and MultiPolygon features.
// Non-polygonal features only appear in the GeoJSON entry.
func ExportZip(doc gj.Document, baseName string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	jsonData, err := json.MarshalIndent(map[string]any(doc), "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "shapefile: encode collection")
	}
	entry, err := zw.Create(baseName + ".geojson")
	if err != nil {
		return nil, eris.Wrap(err, "shapefile: create zip entry")
	}
	if _, err := entry.Write(jsonData); err != nil {
		return nil, eris.Wrap(err, "shapefile: write zip entry")
	}

	if err := addShapefile(zw, doc.Features(), baseName); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, eris.Wrap(err, "shapefile: close zip")
	}
	return buf.Bytes(), nil
}

// addShapefile writes the shapefile components into the zip. go-shp only
// writes to disk, so the components are staged in a temp directory first.
func addShapefile(zw *zip.Writer, features []any, baseName string) error {
	tempDir, err := os.MkdirTemp("", "shapefile_")
	if err != nil {
		return eris.Wrap(err, "shapefile: create temp directory")
	}
	defer os.RemoveAll(tempDir)

	shpPath := filepath.Join(tempDir, baseName+".shp")
	if err := writeShapefile(shpPath, features); err != nil {
		return err
	}

	if err := os.WriteFile(strings.TrimSuffix(shpPath, ".shp")+".prj", []byte(wgs84WKT), 0644); err != nil {
		return eris.Wrap(err, "shapefile: write prj")
	}

	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
		path := strings.TrimSuffix(shpPath, ".shp") + ext
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return eris.Wrapf(err, "shapefile: read component %s", ext)
		}

		entry, err := zw.Create(baseName + ext)
		if err != nil {
			return eris.Wrapf(err, "shapefile: create %s zip entry", ext)
		}
		if _, err := entry.Write(content); err != nil {
			return eris.Wrapf(err, "shapefile: write %s zip entry", ext)
		}
	}

	return nil
}

func writeShapefile(path string, features []any) error {
	writer, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrap(err, "shapefile: create shapefile")
	}
	defer writer.Close()

	fields, fieldKeys := fieldsFromFeatures(features)
	writer.SetFields(fields)

	row := 0
	for i, raw := range features {
		feat, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		polygon := polygonShape(feat["geometry"])
		if polygon == nil {
			log.Debug().Int("feature", i).Msg("Skipping non-polygonal feature in shapefile export")
			continue
		}
		writer.Write(polygon)

		properties, _ := feat["properties"].(map[string]any)
		writeAttributes(writer, row, fieldKeys, properties)
		row++
	}

	return nil
}

// polygonShape converts a GeoJSON Polygon or MultiPolygon geometry into a
// shapefile polygon, nil for anything else.
func polygonShape(geomRaw any) *shp.Polygon {
	raw, err := json.Marshal(geomRaw)
	if err != nil {
		return nil
	}

	var g geom.T
	if err := geomjson.Unmarshal(raw, &g); err != nil {
		return nil
	}

	var rings [][]shp.Point
	switch t := g.(type) {
	case *geom.Polygon:
		rings = polygonRings(t)
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			rings = append(rings, polygonRings(t.Polygon(i))...)
		}
	default:
		return nil
	}
	if len(rings) == 0 {
		return nil
	}

	return (*shp.Polygon)(shp.NewPolyLine(rings))
}

func polygonRings(p *geom.Polygon) [][]shp.Point {
	var rings [][]shp.Point
	for i := 0; i < p.NumLinearRings(); i++ {
		coords := p.LinearRing(i).Coords()
		points := make([]shp.Point, 0, len(coords))
		for _, c := range coords {
			points = append(points, shp.Point{X: c.X(), Y: c.Y()})
		}
		if len(points) > 0 {
			rings = append(rings, points)
		}
	}
	return rings
}

// fieldsFromFeatures derives DBF fields from the first feature's properties,
// in sorted key order so the column layout is deterministic.
func fieldsFromFeatures(features []any) ([]shp.Field, []string) {
	var properties map[string]any
	for _, raw := range features {
		if feat, ok := raw.(map[string]any); ok {
			if props, ok := feat["properties"].(map[string]any); ok && len(props) > 0 {
				properties = props
				break
			}
		}
	}

	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fields := make([]shp.Field, 0, len(keys))
	for _, key := range keys {
		// DBF caps field names at 10 characters.
		name := key
		if len(name) > 10 {
			name = name[:10]
		}

		switch properties[key].(type) {
		case string:
			fields = append(fields, shp.StringField(name, 254))
		case float64:
			fields = append(fields, shp.FloatField(name, 15, 5))
		case bool:
			fields = append(fields, shp.StringField(name, 5))
		default:
			fields = append(fields, shp.StringField(name, 100))
		}
	}

	if len(fields) == 0 {
		fields = append(fields, shp.NumberField("ID", 10))
		keys = nil
	}
	return fields, keys
}

func writeAttributes(writer *shp.Writer, row int, fieldKeys []string, properties map[string]any) {
	if len(fieldKeys) == 0 {
		if err := writer.WriteAttribute(row, 0, row); err != nil {
			log.Debug().Err(err).Int("row", row).Msg("Failed to write ID attribute")
		}
		return
	}

	for i, key := range fieldKeys {
		value := properties[key]
		switch v := value.(type) {
		case nil:
			value = ""
		case bool:
			value = fmt.Sprintf("%t", v)
		case map[string]any, []any:
			encoded, _ := json.Marshal(v)
			value = string(encoded)
		}
		if err := writer.WriteAttribute(row, i, value); err != nil {
			log.Debug().Err(err).Int("row", row).Str("field", key).Msg("Failed to write attribute")
		}
	}
}
