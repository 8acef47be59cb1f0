package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"github.com/tj/go-spin"

	"github.com/bsaid97/go-geojson-repair/config"
	"github.com/bsaid97/go-geojson-repair/geojson"
	"github.com/bsaid97/go-geojson-repair/logger"
	"github.com/bsaid97/go-geojson-repair/repair"
	"github.com/bsaid97/go-geojson-repair/shapefile"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"    env:"CONFIG_FILE" description:"Path to configuration file"`
	Output     string `short:"o" long:"output"    description:"Output file path (single input only)"`
	OutDir     string `short:"d" long:"out-dir"   description:"Directory for batch output files"`
	Precision  int    `short:"p" long:"precision" description:"Round coordinates to this many decimal places (negative disables)" default:"-1"`
	Workers    int    `short:"w" long:"workers"   env:"WORKERS" description:"Worker count for batch mode (0 = NumCPU)"`
	Shapefile  bool   `short:"s" long:"shapefile" description:"Also write a zip with a shapefile rendition next to each output"`
	Quiet      bool   `short:"q" long:"quiet"     description:"Suppress the progress spinner"`

	Args struct {
		Inputs []string `positional-arg-name:"input" description:"Input GeoJSON files" required:"1"`
	} `positional-args:"yes"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	if opts.ConfigFile != "" {
		cfg, err := config.Load(opts.ConfigFile)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		if opts.Precision < 0 && cfg.Precision > 0 {
			opts.Precision = cfg.Precision
		}
		if opts.Workers == 0 && cfg.Workers > 0 {
			opts.Workers = cfg.Workers
		}
	}

	engine := geojson.NewGeosEngine()

	if len(opts.Args.Inputs) == 1 {
		repairSingle(engine, &opts)
		return
	}

	if opts.Output != "" {
		log.Fatal().Msg("-o/--output only applies to a single input, use -d/--out-dir")
	}
	repairBatch(engine, &opts)
}

func repairSingle(engine geojson.Engine, opts *Options) {
	input := opts.Args.Inputs[0]
	output := opts.Output
	if output == "" {
		output = outputName(input, opts.OutDir)
	}

	repairer := repair.New(engine)
	repairer.Precision = opts.Precision
	if !opts.Quiet {
		s := spin.New()
		repairer.Progress = func(percent int) {
			fmt.Fprintf(os.Stderr, "\r%s repairing %3d%%", s.Next(), percent)
		}
	}

	summary, err := repairer.RepairFile(input, output)
	if !opts.Quiet {
		fmt.Fprint(os.Stderr, "\r")
	}
	if err != nil {
		log.Fatal().Err(err).Str("input", input).Msg("Repair failed")
	}

	printSummary(output, summary)

	if opts.Shapefile {
		exportShapefile(output)
	}
}

func repairBatch(engine geojson.Engine, opts *Options) {
	jobs := make([]repair.BatchJob, 0, len(opts.Args.Inputs))
	for _, input := range opts.Args.Inputs {
		jobs = append(jobs, repair.BatchJob{
			Input:  input,
			Output: outputName(input, opts.OutDir),
		})
	}

	results := repair.RepairBatch(engine, jobs, opts.Workers, opts.Precision)

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			log.Error().Err(result.Err).Str("input", result.Job.Input).Msg("Repair failed")
			continue
		}
		printSummary(result.Job.Output, result.Summary)
		if opts.Shapefile {
			exportShapefile(result.Job.Output)
		}
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Int("total", len(results)).Msg("Batch finished with failures")
	}
}

func printSummary(output string, summary *repair.Summary) {
	log.Info().
		Str("output", output).
		Int("total", summary.Total).
		Int("keptValid", summary.KeptValid).
		Int("keptBuffered", summary.KeptBuffered).
		Int("noGeometry", summary.NoGeometry).
		Int("droppedUnparseable", summary.DroppedUnparseable).
		Int("droppedUnrepairable", summary.DroppedUnrepairable).
		Msg("Repair complete")
}

func exportShapefile(outputPath string) {
	doc, err := geojson.Load(outputPath)
	if err != nil {
		log.Error().Err(err).Str("file", outputPath).Msg("Shapefile export: reload failed")
		return
	}

	base := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
	zipData, err := shapefile.ExportZip(doc, base)
	if err != nil {
		log.Error().Err(err).Str("file", outputPath).Msg("Shapefile export failed")
		return
	}

	zipPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".zip"
	if err := os.WriteFile(zipPath, zipData, 0644); err != nil {
		log.Error().Err(err).Str("file", zipPath).Msg("Failed to write shapefile zip")
		return
	}
	log.Info().Str("file", zipPath).Msg("Shapefile zip written")
}

// outputName places the repaired file next to the input (or in dir when set),
// keeping the _PROCESSED naming convention.
func outputName(input, dir string) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + "_PROCESSED.geojson"
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, name)
}
