package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"postzone/logger"
)

// Stage names as they appear in skip records and stage counts.
const (
	StageMaskUnify     = "mask_unify"
	StageClip          = "clip"
	StageCoverageUnion = "coverage_union"
	StageGapBuild      = "gap_build"
	StageGapAssign     = "gap_assign"
	StageDissolve      = "dissolve"
	StageLabel         = "label"
)

// Reason codes attached to skip records.
const (
	ReasonNoGeometry       = "no_geometry"
	ReasonUnionFailed      = "union_failed"
	ReasonUnionEmpty       = "union_empty"
	ReasonIntersectFailed  = "intersect_failed"
	ReasonDifferenceFailed = "difference_failed"
	ReasonCentroidFailed   = "centroid_failed"
	ReasonMissingCode      = "missing_code"
	ReasonGapTooLarge      = "gap_too_large"
	ReasonNoCandidates     = "no_candidates"
)

// Skip records one feature, gap, or group a stage dropped. Index is the
// position within the stage's input, -1 for group-level records.
type Skip struct {
	Stage  string `json:"stage"`
	Index  int    `json:"index"`
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// StageCount is the in/out feature count of one executed stage.
type StageCount struct {
	Stage string `json:"stage"`
	In    int    `json:"in"`
	Out   int    `json:"out"`
}

// RunReport is the stable JSON account of one pipeline run: what ran, what
// survived, and every skip with its reason. Written to the configured
// report path next to the outputs.
type RunReport struct {
	Mode       string    `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Stages []StageCount `json:"stages"`
	Skips  []Skip       `json:"skips,omitempty"`

	Summary ReportSummary `json:"summary"`
}

type ReportSummary struct {
	Features  int            `json:"features"`
	Dissolved int            `json:"dissolved"`
	Labels    int            `json:"labels"`
	Skipped   int            `json:"skipped"`
	ByReason  map[string]int `json:"by_reason,omitempty"`
}

func NewReport(mode Mode) *RunReport {
	return &RunReport{Mode: mode.String(), StartedAt: time.Now()}
}

// Stage appends one stage count.
func (r *RunReport) Stage(stage string, in, out int) {
	r.Stages = append(r.Stages, StageCount{Stage: stage, In: in, Out: out})
}

// Skip records a dropped item. Aggregates end up in the summary; the
// individual record is only logged at debug level.
func (r *RunReport) Skip(stage string, index int, code, reason, detail string) {
	r.Skips = append(r.Skips, Skip{Stage: stage, Index: index, Code: code, Reason: reason, Detail: detail})
	logger.L().Debug("skipped", "stage", stage, "index", index, "code", code, "reason", reason, "detail", detail)
}

// Finalize stamps the end time in UTC and computes the summary tallies
// from the recorded skips. Call once, after the last stage.
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = time.Now().UTC()

	r.Summary.Skipped = len(r.Skips)
	if len(r.Skips) > 0 {
		byReason := make(map[string]int, len(r.Skips))
		for _, s := range r.Skips {
			byReason[s.Reason]++
		}
		r.Summary.ByReason = byReason
	}
}

// Write serializes the report as indented JSON.
func (r *RunReport) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
