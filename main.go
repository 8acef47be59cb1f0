package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/bsaid97/go-geojson-repair/config"
	"github.com/bsaid97/go-geojson-repair/geojson"
	"github.com/bsaid97/go-geojson-repair/logger"
	"github.com/bsaid97/go-geojson-repair/repair"
	"github.com/bsaid97/go-geojson-repair/shapefile"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE"    description:"Path to configuration file"`
	Addr       string `short:"a" long:"addr"   env:"LISTEN_ADDRESS" description:"Address to listen on" default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"   env:"LISTEN_PORT"    description:"Port to listen on"    default:"8080"`
}

// precision applied by the server to repaired coordinates; negative disables
// truncation.
var serverPrecision = -1

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
		if cfg.Listen != "" {
			opts.Addr = cfg.Listen
		}
		if cfg.Port > 0 {
			opts.Port = cfg.Port
		}
		if cfg.Precision > 0 {
			serverPrecision = cfg.Precision
		}
	}

	http.HandleFunc("/repair", repairHandler)
	http.HandleFunc("/check-geometry", checkGeometryHandler)
	http.HandleFunc("/healthz", healthzHandler)

	addr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().Str("addr", addr).Msg("Server is listening")

	if err := http.ListenAndServe(addr, RequestLogger(http.DefaultServeMux)); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	sendResponse(w, []byte(`{"status":"ok"}`))
}

func repairHandler(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("Recovered in repairHandler")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}()

	request, err := readRepairRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var doc geojson.Document
	if err := json.Unmarshal([]byte(request.Payload), &doc); err != nil {
		http.Error(w, "Malformed feature collection: "+err.Error(), http.StatusBadRequest)
		return
	}

	repairer := repair.New(geojson.NewGeosEngine())
	repairer.Precision = serverPrecision
	repairer.Progress = func(percent int) {
		log.Debug().Int("progress", percent).Msg("Repair progress")
	}
	summary := repairer.RepairCollection(doc)

	log.Info().
		Int("total", summary.Total).
		Int("kept", summary.Kept()).
		Int("dropped", summary.Dropped()).
		Msg("Repair request complete")

	if request.SaveFile && request.FilePath != "" {
		outputPath := processedName(request.FilePath, ".geojson")
		if err := doc.Write(outputPath); err != nil {
			http.Error(w, "Failed to save output: "+err.Error(), http.StatusInternalServerError)
			return
		}
		body, _ := json.Marshal(map[string]any{"output": outputPath, "summary": summary})
		sendResponse(w, body)
		return
	}

	if request.Shapefile {
		zipData, err := shapefile.ExportZip(doc, "repaired")
		if err != nil {
			http.Error(w, "Shapefile export failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		sendZipResponse(w, zipData)
		return
	}

	summaryJSON, _ := json.Marshal(summary)
	w.Header().Set("X-Repair-Summary", string(summaryJSON))

	body, err := json.Marshal(map[string]any(doc))
	if err != nil {
		http.Error(w, "Failed to encode output: "+err.Error(), http.StatusInternalServerError)
		return
	}
	sendResponse(w, body)
}

func checkGeometryHandler(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("Recovered in checkGeometryHandler")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}()

	request, err := readRepairRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var doc geojson.Document
	if err := json.Unmarshal([]byte(request.Payload), &doc); err != nil {
		http.Error(w, "Malformed feature collection: "+err.Error(), http.StatusBadRequest)
		return
	}

	issues := repair.Check(geojson.NewGeosEngine(), doc)
	if issues == nil {
		issues = []repair.ValidityIssue{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(issues); err != nil {
		log.Error().Err(err).Msg("Failed to encode check response")
	}
}

// processedName derives the server-side output path from an input path, the
// way processed files have always been named here.
func processedName(filePath, ext string) string {
	name := strings.TrimSuffix(filePath, ".geojson")
	name = strings.TrimSuffix(name, ".json")
	return name + "_PROCESSED" + ext
}

func sendResponse(w http.ResponseWriter, response []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(response)
}

func sendZipResponse(w http.ResponseWriter, zipData []byte) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=\"repaired.zip\"")
	w.WriteHeader(http.StatusOK)
	w.Write(zipData)
}
