package mask

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"postzone/geomop"
)

func squareFeature(minX, minY, maxX, maxY float64) *geojson.Feature {
	return geojson.NewFeature(orb.Polygon{orb.Ring{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}})
}

func TestUnifySkipsBadFeatures(t *testing.T) {
	bad := geojson.NewFeature(orb.Polygon{orb.Ring{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}}})
	fs := []*geojson.Feature{
		squareFeature(0, 0, 1, 1),
		bad,
		squareFeature(0.5, 0, 1.5, 1),
	}
	var skipped []int
	g := Unify(fs, func(i int, err error) { skipped = append(skipped, i) })
	if len(skipped) != 1 || skipped[0] != 1 {
		t.Fatalf("skipped = %v, want [1]", skipped)
	}
	if area := planar.Area(g); area < 1.49 || area > 1.51 {
		t.Errorf("unified area = %v, want 1.5", area)
	}
}

func TestUnifyEmpty(t *testing.T) {
	if g := Unify(nil, nil); g != nil {
		t.Errorf("Unify(nil) = %v, want nil", g)
	}
	if g := Unify([]*geojson.Feature{nil}, nil); g != nil {
		t.Errorf("Unify([nil]) = %v, want nil", g)
	}
}

func TestBuild(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(squareFeature(0, 0, 1, 1))
	fc.Append(squareFeature(2, 0, 3, 1))
	data, err := fc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "land.geojson")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	g, err := Build(path, nil)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if n := len(geomop.Parts(g)); n != 2 {
		t.Errorf("mask parts = %d, want 2", n)
	}
}

func TestBuildEmptyMaskFatal(t *testing.T) {
	// Every member is degenerate, so the union yields nothing.
	doc := `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[2,2],[2,0],[0,2],[0,0]]]}}
	]}`
	path := filepath.Join(t.TempDir(), "bad.geojson")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	_, err := Build(path, nil)
	if !errors.Is(err, ErrEmptyMask) {
		t.Fatalf("Build error = %v, want ErrEmptyMask", err)
	}
}

func TestBuildMissingFile(t *testing.T) {
	if _, err := Build(filepath.Join(t.TempDir(), "missing.geojson"), nil); err == nil {
		t.Errorf("expected error for missing file")
	}
}
