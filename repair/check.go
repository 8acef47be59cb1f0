package repair

import "github.com/bsaid97/go-geojson-repair/geojson"

// ValidityIssue describes one invalid or unreadable feature geometry.
type ValidityIssue struct {
	Ref          int    `json:"ref"`
	ErrorMessage string `json:"errorMessage"`
}

// Check reports validity problems per feature without modifying anything.
// Features without a geometry are skipped; geometries the engine cannot parse
// are reported as such.
func Check(eng geojson.Engine, doc geojson.Document) []ValidityIssue {
	var issues []ValidityIssue

	for i, raw := range doc.Features() {
		feat, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		geomDict, ok := feat["geometry"].(map[string]any)
		if !ok {
			continue
		}

		g, err := eng.Parse(geomDict)
		if err != nil {
			issues = append(issues, ValidityIssue{Ref: i, ErrorMessage: "unparseable geometry"})
			continue
		}

		if !eng.IsValid(g) {
			issues = append(issues, ValidityIssue{Ref: i, ErrorMessage: eng.ValidReason(g)})
		}
		eng.Destroy(g)
	}

	return issues
}
