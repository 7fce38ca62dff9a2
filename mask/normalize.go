// Package mask loads boundary outlines (land or border) and folds them
// into the single geometry the clipper and gap builder work against.
package mask

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// Normalize flattens a boundary document of unknown shape into a feature
// list: a bare geometry is wrapped in one feature with empty properties, a
// lone feature becomes a one-element list, and a feature collection's
// features pass through unchanged. Geometry is not validated here; unusable
// members surface as skips when the mask is unified.
func Normalize(doc []byte) ([]*geojson.Feature, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		return nil, fmt.Errorf("parse mask document: %w", err)
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(doc)
		if err != nil {
			return nil, fmt.Errorf("parse mask collection: %w", err)
		}
		return fc.Features, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(doc)
		if err != nil {
			return nil, fmt.Errorf("parse mask feature: %w", err)
		}
		return []*geojson.Feature{f}, nil
	case "":
		return nil, fmt.Errorf("mask document has no type")
	default:
		g, err := geojson.UnmarshalGeometry(doc)
		if err != nil {
			return nil, fmt.Errorf("parse mask geometry: %w", err)
		}
		return []*geojson.Feature{geojson.NewFeature(g.Geometry())}, nil
	}
}
