package postal

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb/geojson"
)

func TestWriteCollectionGzipMatchesPlain(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(NewZoneFeature("0150", unitSquare()))

	path := filepath.Join(t.TempDir(), "zones.geojson")
	if err := WriteCollection(path, fc); err != nil {
		t.Fatalf("WriteCollection error: %v", err)
	}

	plain, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read plain output: %v", err)
	}
	zf, err := os.Open(path + ".gz")
	if err != nil {
		t.Fatalf("open gzip output: %v", err)
	}
	defer zf.Close()
	zr, err := gzip.NewReader(zf)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	unzipped, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("gunzip: %v", err)
	}
	if !bytes.Equal(plain, unzipped) {
		t.Errorf("gzip content differs from plain output")
	}
}

func TestReadFeaturesRoundTrip(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(unitSquare())
	f.Properties[CodeProperty] = float64(7)
	fc.Append(f)

	path := filepath.Join(t.TempDir(), "postal.geojson")
	if err := WriteCollection(path, fc); err != nil {
		t.Fatalf("WriteCollection error: %v", err)
	}

	got, err := ReadFeatures(path)
	if err != nil {
		t.Fatalf("ReadFeatures error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("features = %d, want 1", len(got))
	}
	code, ok := Code(got[0])
	if !ok || code != "0007" {
		t.Errorf("code = %q, %v, want 0007, true", code, ok)
	}
}

func TestReadFeaturesErrors(t *testing.T) {
	if _, err := ReadFeatures(filepath.Join(t.TempDir(), "missing.geojson")); err == nil {
		t.Errorf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.geojson")
	if err := os.WriteFile(path, []byte("not geojson"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := ReadFeatures(path); err == nil {
		t.Errorf("expected error for malformed file")
	}
}
