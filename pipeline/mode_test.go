package pipeline

import "testing"

func TestParseMode(t *testing.T) {
	cases := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"none", ModeNone, false},
		{"coast", ModeCoast, false},
		{"border", ModeBorder, false},
		{"gapfill-border", ModeGapfillBorder, false},
		{"", ModeNone, true},
		{"Coast", ModeNone, true},
		{"gapfill", ModeNone, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMode(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseMode(%q): expected error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestModeStringRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeNone, ModeCoast, ModeBorder, ModeGapfillBorder} {
		got, err := ParseMode(m.String())
		if err != nil {
			t.Fatalf("ParseMode(%q) error: %v", m.String(), err)
		}
		if got != m {
			t.Errorf("round trip %v -> %q -> %v", m, m.String(), got)
		}
	}
	if s := Mode(99).String(); s != "mode(99)" {
		t.Errorf("unknown mode string = %q", s)
	}
}
