package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"postzone/geomop"
	"postzone/mask"
)

func writeMaskFile(t *testing.T, polys ...orb.Polygon) string {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	for _, p := range polys {
		fc.Append(geojson.NewFeature(p))
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal mask fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "mask.geojson")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write mask fixture: %v", err)
	}
	return path
}

func TestRunModeNoneIsIdentity(t *testing.T) {
	features := []*geojson.Feature{
		zone("0150", rectPoly(0, 0, 1, 1)),
		zone("0151", rectPoly(3, 0, 4, 1)),
	}
	res, err := Run(Config{Mode: ModeNone}, features)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want, err := collect(features).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal input: %v", err)
	}
	got, err := res.Working.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal output: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("working set differs from raw input")
	}

	// Dissolve and labels still run.
	if !sameCodes(collectCodes(res.Dissolved.Features), []string{"0150", "0151"}) {
		t.Errorf("dissolved codes = %v", collectCodes(res.Dissolved.Features))
	}
	if len(res.Labels.Features) != 2 {
		t.Errorf("labels = %d, want 2", len(res.Labels.Features))
	}
}

func TestRunCoastFillsGapStrips(t *testing.T) {
	// Two land parts, each holding one zone plus an uncovered strip; every
	// strip must grow the zone nearer to it.
	maskPath := writeMaskFile(t, rectPoly(0, 0, 1.8, 1), rectPoly(2.2, 0, 4, 1))
	features := []*geojson.Feature{
		zone("0150", rectPoly(0, 0, 1, 1)),
		zone("0151", rectPoly(3, 0, 4, 1)),
	}
	cfg := Config{Mode: ModeCoast, MaskPath: maskPath}
	res, err := Run(cfg, features)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	dissolved := res.Dissolved.Features
	if !sameCodes(collectCodes(dissolved), []string{"0150", "0151"}) {
		t.Fatalf("dissolved codes = %v, want [0150 0151]", collectCodes(dissolved))
	}
	for i, wantArea := range []float64{1.8, 1.8} {
		area := planar.Area(dissolved[i].Geometry)
		if area < wantArea-0.01 || area > wantArea+0.01 {
			t.Errorf("dissolved %d area = %v, want %v", i, area, wantArea)
		}
	}
	if !geomop.Contains(dissolved[0].Geometry, orb.Point{1.4, 0.5}) {
		t.Errorf("0150 should have grown into its strip")
	}
	if geomop.Contains(dissolved[0].Geometry, orb.Point{2.6, 0.5}) {
		t.Errorf("0150 should not cover the far strip")
	}
	if !geomop.Contains(dissolved[1].Geometry, orb.Point{2.6, 0.5}) {
		t.Errorf("0151 should have grown into its strip")
	}

	if res.Report.Summary.Features != 4 || res.Report.Summary.Dissolved != 2 || res.Report.Summary.Labels != 2 {
		t.Errorf("summary = %+v, want 4 features, 2 dissolved, 2 labels", res.Report.Summary)
	}
	if res.Report.Summary.Skipped != 0 {
		t.Errorf("skips = %+v, want none", res.Report.Skips)
	}
}

func TestRunBorderStopsAfterClip(t *testing.T) {
	maskPath := writeMaskFile(t, rectPoly(0, 0, 2.5, 1))
	features := []*geojson.Feature{
		zone("0150", rectPoly(0, 0, 1, 1)),
		zone("0151", rectPoly(2, 0, 3, 1)),
		zone("0152", rectPoly(5, 0, 6, 1)),
	}
	cfg := Config{Mode: ModeBorder, BorderMaskPath: maskPath}
	res, err := Run(cfg, features)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	dissolved := res.Dissolved.Features
	if !sameCodes(collectCodes(dissolved), []string{"0150", "0151"}) {
		t.Fatalf("dissolved codes = %v, want [0150 0151]", collectCodes(dissolved))
	}
	// No gap fill: the uncovered strip between the zones stays uncovered.
	for _, f := range dissolved {
		if geomop.Contains(f.Geometry, orb.Point{1.5, 0.5}) {
			t.Errorf("border mode must not fill gaps")
		}
	}
	if area := planar.Area(dissolved[1].Geometry); area < 0.49 || area > 0.51 {
		t.Errorf("0151 clipped area = %v, want 0.5", area)
	}
}

func TestRunGapfillBorderKeepsOriginals(t *testing.T) {
	maskPath := writeMaskFile(t, rectPoly(0, 0, 4, 1))
	features := []*geojson.Feature{
		zone("0150", rectPoly(0, 0, 2, 1)),
		zone("0151", rectPoly(3, 0, 4, 1)),
	}
	cfg := Config{Mode: ModeGapfillBorder, BorderMaskPath: maskPath}
	res, err := Run(cfg, features)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	// working set = both originals plus one assigned gap feature.
	if res.Report.Summary.Features != 3 {
		t.Fatalf("features = %d, want 3", res.Report.Summary.Features)
	}
	dissolved := res.Dissolved.Features
	if !sameCodes(collectCodes(dissolved), []string{"0150", "0151"}) {
		t.Fatalf("dissolved codes = %v, want [0150 0151]", collectCodes(dissolved))
	}
	// The strip between 2 and 3 sits nearer 0151's centroid.
	if geomop.Contains(dissolved[0].Geometry, orb.Point{2.5, 0.5}) {
		t.Errorf("gap went to 0150, want 0151")
	}
	if !geomop.Contains(dissolved[1].Geometry, orb.Point{2.5, 0.5}) {
		t.Errorf("0151 should cover the gap strip")
	}
	// Originals stay unclipped.
	if area := planar.Area(dissolved[0].Geometry); area < 1.99 || area > 2.01 {
		t.Errorf("0150 area = %v, want 2", area)
	}
}

func TestRunMaskFatal(t *testing.T) {
	features := []*geojson.Feature{zone("0150", rectPoly(0, 0, 1, 1))}

	if _, err := Run(Config{Mode: ModeCoast, MaskPath: "/does/not/exist.geojson"}, features); err == nil {
		t.Fatalf("expected error for missing mask file")
	}
	if _, err := Run(Config{Mode: ModeCoast}, features); err == nil {
		t.Fatalf("expected error for missing mask path")
	}

	// A mask whose members all fail to union is as fatal as a missing one.
	emptyPath := writeMaskFile(t, bowtiePoly())
	_, err := Run(Config{Mode: ModeCoast, MaskPath: emptyPath}, features)
	if !errors.Is(err, mask.ErrEmptyMask) {
		t.Fatalf("error = %v, want ErrEmptyMask", err)
	}
}

func TestRunUnknownModeRejected(t *testing.T) {
	if _, err := Run(Config{Mode: Mode(9), MaskPath: "m"}, nil); err == nil {
		t.Fatalf("expected error for unhandled mode")
	}
}

func TestWriteOutputs(t *testing.T) {
	features := []*geojson.Feature{zone("0150", rectPoly(0, 0, 1, 1))}
	res, err := Run(Config{Mode: ModeNone}, features)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	dir := t.TempDir()
	cfg := Config{OutDir: dir, ReportPath: filepath.Join(dir, "report.json")}
	if err := res.WriteOutputs(cfg); err != nil {
		t.Fatalf("WriteOutputs error: %v", err)
	}

	for _, name := range []string{
		ZonesFile, ZonesFile + ".gz",
		DissolvedFile, DissolvedFile + ".gz",
		LabelsFile, LabelsFile + ".gz",
		"report.json",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, ZonesFile))
	if err != nil {
		t.Fatalf("read zones: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("zones output is not valid geojson: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Errorf("zones features = %d, want 1", len(fc.Features))
	}
}
