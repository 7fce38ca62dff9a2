package mask

import (
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"postzone/geomop"
	"postzone/logger"
)

// ErrEmptyMask reports that a mask source yielded no usable geometry after
// unification. Callers treat this as a configuration failure.
var ErrEmptyMask = errors.New("mask union produced no geometry")

// Load reads and normalizes one mask file.
func Load(path string) ([]*geojson.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mask: %w", err)
	}
	fs, err := Normalize(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fs, nil
}

// Unify left-folds the features' geometries into one polygonal mask.
// Fold order is the input order; a feature whose union step fails is
// reported through skip and left out while the accumulator survives.
// Returns nil when nothing usable remains.
func Unify(fs []*geojson.Feature, skip func(i int, err error)) orb.Geometry {
	geoms := make([]orb.Geometry, len(fs))
	for i, f := range fs {
		if f != nil {
			geoms[i] = f.Geometry
		}
	}
	return geomop.FoldUnion(geoms, skip)
}

// Build loads path and unifies it into the run's mask geometry. An
// unreadable file or an empty union is an error; per-feature failures only
// shrink the mask.
func Build(path string, skip func(i int, err error)) (orb.Geometry, error) {
	fs, err := Load(path)
	if err != nil {
		return nil, err
	}
	skipped := 0
	g := Unify(fs, func(i int, err error) {
		skipped++
		if skip != nil {
			skip(i, err)
		}
	})
	if g == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyMask)
	}
	logger.L().Info("mask built", "path", path, "features", len(fs), "skipped", skipped)
	return g, nil
}
