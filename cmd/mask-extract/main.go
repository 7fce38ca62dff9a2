// Command mask-extract pulls closed tagged ways out of an OSM .pbf extract
// and writes them as a polygon FeatureCollection usable as a pipeline mask.
package main

import (
	"flag"
	"os"

	"github.com/joho/godotenv"

	"postzone/logger"
	"postzone/mask"
	"postzone/postal"
)

func main() {
	_ = godotenv.Load()
	logger.Setup()

	pbfPath := flag.String("pbf", "", "OSM .pbf extract to read")
	key := flag.String("key", "natural", "tag key closed ways must carry")
	value := flag.String("value", "coastline", "tag value to match, empty matches any value")
	outPath := flag.String("out", "mask.geojson", "output GeoJSON file")
	flag.Parse()

	if *pbfPath == "" {
		logger.L().Error("missing -pbf path")
		os.Exit(1)
	}

	fc, err := mask.ExtractClosedWays(*pbfPath, *key, *value)
	if err != nil {
		logger.L().Error("extract mask", "error", err)
		os.Exit(1)
	}
	if err := postal.WriteCollection(*outPath, fc); err != nil {
		logger.L().Error("write mask", "error", err)
		os.Exit(1)
	}
	logger.L().Info("mask written", "path", *outPath, "features", len(fc.Features))
}
