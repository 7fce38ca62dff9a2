// Command postzone runs the boundary pipeline: load postal features, apply
// the configured mask mode, dissolve by code and write the three GeoJSON
// outputs plus their gzip siblings.
package main

import (
	"context"
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/paulmach/orb/geojson"

	"postzone/logger"
	"postzone/pipeline"
	"postzone/postal"
	"postzone/store"
)

func main() {
	_ = godotenv.Load()
	logger.Setup()

	// Flag defaults come from the environment so a .env file can carry the
	// deployment configuration; flags still win.
	mode := flag.String("mode", envOr("MODE", "none"), "mask mode: none, coast, border or gapfill-border")
	postalPath := flag.String("postal", envOr("POSTAL_PATH", ""), "postal features GeoJSON file")
	pgTable := flag.String("pg-table", envOr("PG_TABLE", ""), "read postal features from this Postgres table (PG_* env builds the DSN)")
	maskPath := flag.String("mask", envOr("MASK_PATH", ""), "land mask GeoJSON file")
	borderMask := flag.String("border-mask", envOr("BORDER_MASK_PATH", ""), "border mask GeoJSON file, preferred by border modes")
	maxGapArea := flag.Float64("max-gap-area", envFloat("MAX_GAP_AREA_SQM", 0), "discard gaps larger than this many square meters, 0 means unbounded")
	outDir := flag.String("out", envOr("OUT_DIR", "."), "output directory")
	reportPath := flag.String("report", envOr("REPORT_PATH", ""), "write the run report JSON to this path")
	flag.Parse()

	m, err := pipeline.ParseMode(*mode)
	if err != nil {
		fail("invalid mode", err)
	}

	cfg := pipeline.Config{
		PostalPath:     *postalPath,
		MaskPath:       *maskPath,
		BorderMaskPath: *borderMask,
		Mode:           m,
		MaxGapAreaSqM:  *maxGapArea,
		OutDir:         *outDir,
		ReportPath:     *reportPath,
	}
	if *pgTable != "" {
		cfg.PostalDSN = store.BuildDSNFromEnv()
		cfg.PostalTable = *pgTable
	}
	if err := cfg.Validate(); err != nil {
		fail("invalid configuration", err)
	}

	features, err := loadFeatures(cfg)
	if err != nil {
		fail("load postal features", err)
	}

	res, err := pipeline.Run(cfg, features)
	if err != nil {
		fail("pipeline run", err)
	}
	if err := res.WriteOutputs(cfg); err != nil {
		fail("write outputs", err)
	}
}

func loadFeatures(cfg pipeline.Config) ([]*geojson.Feature, error) {
	if cfg.PostalDSN != "" {
		db, err := store.Open(cfg.PostalDSN)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return store.ReadFeatures(context.Background(), db, cfg.PostalTable)
	}
	return postal.ReadFeatures(cfg.PostalPath)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func fail(msg string, err error) {
	logger.L().Error(msg, "error", err)
	os.Exit(1)
}
