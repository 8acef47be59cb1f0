package repair

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"github.com/bsaid97/go-geojson-repair/geojson"
)

// ProgressFunc receives percentage updates in [0,100] during a repair run.
type ProgressFunc func(percent int)

// Summary accounts for every feature of a run: how many survived and why the
// rest were dropped.
type Summary struct {
	Total               int `json:"total"`
	KeptValid           int `json:"keptValid"`
	KeptBuffered        int `json:"keptBuffered"`
	NoGeometry          int `json:"noGeometry"`
	DroppedUnparseable  int `json:"droppedUnparseable"`
	DroppedUnrepairable int `json:"droppedUnrepairable"`
}

// Kept returns the number of features present in the output.
func (s Summary) Kept() int {
	return s.KeptValid + s.KeptBuffered + s.NoGeometry
}

// Dropped returns the number of features removed from the output.
func (s Summary) Dropped() int {
	return s.DroppedUnparseable + s.DroppedUnrepairable
}

// Repairer runs the repair pipeline over feature collections. Engine is
// required; Progress is optional. Precision, when non-negative, rounds
// repaired coordinates to that many decimal places.
type Repairer struct {
	Engine    geojson.Engine
	Progress  ProgressFunc
	Precision int

	lastProgress int
}

// New returns a Repairer with coordinate truncation disabled.
func New(engine geojson.Engine) *Repairer {
	return &Repairer{Engine: engine, Precision: -1}
}

type featureOutcome int

const (
	featureKeptValid featureOutcome = iota
	featureKeptBuffered
	featurePassthrough
	featureDroppedParse
	featureDroppedRepair
)

// RepairFile loads the collection at inputPath, repairs it and writes the
// result to outputPath. Load and write failures are fatal and nothing is
// written; per-feature failures only shrink the output. Exactly one of
// summary and error is meaningful. Progress stalls at its last value when
// the run aborts.
func (r *Repairer) RepairFile(inputPath, outputPath string) (summary *Summary, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			summary, err = nil, eris.Errorf("repair: %v", rec)
		}
	}()

	r.lastProgress = 0
	r.emit(10)

	doc, err := geojson.Load(inputPath)
	if err != nil {
		return nil, err
	}
	r.emit(30)

	s := r.RepairCollection(doc)

	if err := doc.Write(outputPath); err != nil {
		return nil, err
	}
	r.emit(100)

	log.Info().
		Str("output", outputPath).
		Int("total", s.Total).
		Int("kept", s.Kept()).
		Int("dropped", s.Dropped()).
		Msg("Feature collection repaired")

	return s, nil
}

// RepairCollection repairs doc in place: every feature is depth-normalized
// and validity-repaired, and the document's feature sequence is replaced by
// the survivors in their original relative order.
func (r *Repairer) RepairCollection(doc geojson.Document) *Summary {
	features := doc.Features()
	total := len(features)
	n := total
	if n < 1 {
		n = 1
	}

	summary := &Summary{Total: total}
	survivors := make([]any, 0, total)

	for i, raw := range features {
		kept, outcome := r.repairFeature(raw)
		if kept != nil {
			survivors = append(survivors, kept)
		}

		switch outcome {
		case featureKeptValid:
			summary.KeptValid++
		case featureKeptBuffered:
			summary.KeptBuffered++
		case featurePassthrough:
			summary.NoGeometry++
		case featureDroppedParse:
			summary.DroppedUnparseable++
		case featureDroppedRepair:
			summary.DroppedUnrepairable++
		}

		r.emit(30 + 60*(i+1)/n)
	}

	doc.SetFeatures(survivors)
	return summary
}

// repairFeature runs one feature through the pipeline, returning the feature
// to keep (nil to drop) and how it fared. Features without a geometry pass
// through untouched.
func (r *Repairer) repairFeature(raw any) (any, featureOutcome) {
	feat, ok := raw.(map[string]any)
	if !ok {
		return raw, featurePassthrough
	}

	geomRaw, ok := feat["geometry"]
	if !ok || geomRaw == nil {
		return feat, featurePassthrough
	}
	geomDict, ok := geomRaw.(map[string]any)
	if !ok {
		return nil, featureDroppedParse
	}

	g, err := r.Engine.Parse(geojson.NormalizeDepth(geomDict))
	if err != nil {
		return nil, featureDroppedParse
	}
	defer r.Engine.Destroy(g)

	fixed, buffered := RepairValidity(r.Engine, g)
	if fixed == nil {
		return nil, featureDroppedRepair
	}
	if buffered {
		defer r.Engine.Destroy(fixed)
	}

	out, err := r.Engine.ToMap(fixed)
	if err != nil {
		return nil, featureDroppedRepair
	}
	if r.Precision >= 0 {
		TruncateCoordinates(out, r.Precision)
	}

	feat["geometry"] = out
	if buffered {
		return feat, featureKeptBuffered
	}
	return feat, featureKeptValid
}

// emit forwards a progress value, keeping the sequence monotonic.
func (r *Repairer) emit(percent int) {
	if percent < r.lastProgress {
		return
	}
	r.lastProgress = percent
	if r.Progress != nil {
		r.Progress(percent)
	}
}
