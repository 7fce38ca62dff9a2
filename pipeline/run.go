package pipeline

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"postzone/logger"
	"postzone/mask"
	"postzone/postal"
)

// Output file names inside Config.OutDir; each gets a ".gz" sibling with
// identical content.
const (
	ZonesFile     = "zones.geojson"
	DissolvedFile = "zones-dissolved.geojson"
	LabelsFile    = "zone-labels.geojson"
)

// Result holds the three output collections and the run's report.
type Result struct {
	Working   *geojson.FeatureCollection
	Dissolved *geojson.FeatureCollection
	Labels    *geojson.FeatureCollection
	Report    *RunReport
}

// Run executes the configured stage sequence over the postal features.
// Per-feature failures shrink the output and land in the report; an
// unreadable or empty mask aborts the run.
func Run(cfg Config, features []*geojson.Feature) (*Result, error) {
	if cfg.Mode != ModeNone && cfg.maskSource() == "" {
		return nil, errors.New("mask path required for mode " + cfg.Mode.String())
	}
	if cfg.MaxGapAreaSqM <= 0 {
		cfg.MaxGapAreaSqM = math.Inf(1)
	}

	report := NewReport(cfg.Mode)
	logger.L().Info("pipeline started", "mode", cfg.Mode.String(), "features", len(features))

	var working []*geojson.Feature
	switch cfg.Mode {
	case ModeNone:
		working = features
	case ModeCoast:
		m, err := buildMask(cfg, report)
		if err != nil {
			return nil, err
		}
		clipped := Clip(features, m, report)
		covered := coverageUnion(clipped, report)
		gaps := BuildGaps(m, covered, report)
		assigned := AssignGaps(gaps, clipped, cfg.MaxGapAreaSqM, report)
		working = concat(clipped, assigned)
	case ModeBorder:
		m, err := buildMask(cfg, report)
		if err != nil {
			return nil, err
		}
		working = Clip(features, m, report)
	case ModeGapfillBorder:
		m, err := buildMask(cfg, report)
		if err != nil {
			return nil, err
		}
		covered := coverageUnion(features, report)
		gaps := BuildGaps(m, covered, report)
		assigned := AssignGaps(gaps, features, cfg.MaxGapAreaSqM, report)
		working = concat(features, assigned)
	default:
		return nil, fmt.Errorf("unhandled mode %s", cfg.Mode)
	}

	dissolved := Dissolve(working, report)
	labels := BuildLabels(dissolved, report)

	report.Summary.Features = len(working)
	report.Summary.Dissolved = len(dissolved)
	report.Summary.Labels = len(labels)
	report.Finalize()

	logger.L().Info("pipeline finished",
		"features", len(working), "dissolved", len(dissolved),
		"labels", len(labels), "skipped", len(report.Skips))

	return &Result{
		Working:   collect(working),
		Dissolved: collect(dissolved),
		Labels:    collect(labels),
		Report:    report,
	}, nil
}

func buildMask(cfg Config, report *RunReport) (orb.Geometry, error) {
	return mask.Build(cfg.maskSource(), func(i int, err error) {
		report.Skip(StageMaskUnify, i, "", ReasonUnionFailed, err.Error())
	})
}

// coverageUnion recomputes the unified footprint of the working features
// with the same fold the mask unifier uses.
func coverageUnion(fs []*geojson.Feature, report *RunReport) orb.Geometry {
	return mask.Unify(fs, func(i int, err error) {
		report.Skip(StageCoverageUnion, i, "", ReasonUnionFailed, err.Error())
	})
}

func concat(a, b []*geojson.Feature) []*geojson.Feature {
	out := make([]*geojson.Feature, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func collect(fs []*geojson.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range fs {
		fc.Append(f)
	}
	return fc
}

// WriteOutputs writes the three collections into cfg.OutDir, plain plus
// gzip, and the report when a path is configured.
func (r *Result) WriteOutputs(cfg Config) error {
	outputs := []struct {
		name string
		fc   *geojson.FeatureCollection
	}{
		{ZonesFile, r.Working},
		{DissolvedFile, r.Dissolved},
		{LabelsFile, r.Labels},
	}
	for _, o := range outputs {
		path := filepath.Join(cfg.OutDir, o.name)
		if err := postal.WriteCollection(path, o.fc); err != nil {
			return err
		}
		logger.L().Info("output written", "path", path)
	}
	if cfg.ReportPath != "" {
		if err := r.Report.Write(cfg.ReportPath); err != nil {
			return err
		}
		logger.L().Info("report written", "path", cfg.ReportPath)
	}
	return nil
}
