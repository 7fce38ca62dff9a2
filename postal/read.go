package postal

import (
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"postzone/logger"
)

// ReadFeatures loads a postal FeatureCollection file, normalizes every
// code property, and drops features without polygonal geometry.
func ReadFeatures(path string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read postal source: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse postal source %s: %w", path, err)
	}
	kept, dropped := Sanitize(fc.Features)
	logger.L().Info("postal features loaded", "path", path, "kept", len(kept), "dropped", dropped)
	return kept, nil
}
