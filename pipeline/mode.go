// Package pipeline runs the postal-zone geometry stages: clip against a
// mask, fill the gaps the clip leaves, dissolve by code, derive label
// points. One run is single-threaded and batch-oriented; union folds walk
// input order, which keeps results deterministic since geometric union is
// not exactly associative in floating point.
package pipeline

import "fmt"

// Mode selects which stages a run executes. The zero value is ModeNone.
type Mode int

const (
	// ModeNone passes the raw input through untouched.
	ModeNone Mode = iota
	// ModeCoast clips against the land mask and fills coverage gaps.
	ModeCoast
	// ModeBorder clips against the border mask without gap filling.
	ModeBorder
	// ModeGapfillBorder skips clipping and only fills the gaps between
	// the raw features and the border mask.
	ModeGapfillBorder
)

var modeNames = map[Mode]string{
	ModeNone:          "none",
	ModeCoast:         "coast",
	ModeBorder:        "border",
	ModeGapfillBorder: "gapfill-border",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode maps a configuration string onto a Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if s == name {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("unknown mode %q (want none, coast, border or gapfill-border)", s)
}
