package pipeline

import (
	"errors"
	"math"
)

// Config carries everything one run needs. It is built once in main from
// flags and environment and passed down; no stage reads ambient process
// state.
type Config struct {
	// Postal source: a GeoJSON file path, or a Postgres DSN plus table.
	// Exactly one of PostalPath and PostalDSN must be set.
	PostalPath  string
	PostalDSN   string
	PostalTable string

	// MaskPath is the land mask; BorderMaskPath the national border
	// outline. Border modes fall back to MaskPath when BorderMaskPath is
	// unset.
	MaskPath       string
	BorderMaskPath string

	Mode Mode

	// MaxGapAreaSqM discards gaps larger than this many square meters.
	// Zero or negative means unbounded.
	MaxGapAreaSqM float64

	OutDir     string
	ReportPath string
}

// Validate checks the configuration and normalizes defaults. Missing mask
// configuration for a mode that needs one is the fatal case; it never
// degrades to a partial run.
func (c *Config) Validate() error {
	if c.PostalPath == "" && c.PostalDSN == "" {
		return errors.New("postal source required (file path or postgres dsn)")
	}
	if c.PostalPath != "" && c.PostalDSN != "" {
		return errors.New("postal source is either a file path or a postgres dsn, not both")
	}
	if c.PostalDSN != "" && c.PostalTable == "" {
		return errors.New("postal table required with a postgres dsn")
	}
	if c.Mode != ModeNone && c.maskSource() == "" {
		return errors.New("mask path required for mode " + c.Mode.String())
	}
	if c.MaxGapAreaSqM <= 0 {
		c.MaxGapAreaSqM = math.Inf(1)
	}
	if c.OutDir == "" {
		c.OutDir = "."
	}
	return nil
}

// maskSource is the mask file the mode runs against: coast wants the land
// mask, border modes prefer the border mask.
func (c Config) maskSource() string {
	switch c.Mode {
	case ModeBorder, ModeGapfillBorder:
		if c.BorderMaskPath != "" {
			return c.BorderMaskPath
		}
		return c.MaskPath
	default:
		return c.MaskPath
	}
}
