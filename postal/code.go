// Package postal holds the postal-zone feature model: code normalization
// and GeoJSON reading and writing.
package postal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CodeProperty is the feature property carrying the postal code.
const CodeProperty = "code"

// codeWidth is the canonical zero-padded code length.
const codeWidth = 4

// NormalizeCode coerces a raw code property value into the canonical
// zero-padded string form. Sources carry codes as numbers or unpadded
// strings; anything missing or unusable reports ok=false.
func NormalizeCode(v interface{}) (string, bool) {
	switch v := v.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", false
		}
		return pad(s), true
	case float64:
		// Zero and negative numeric codes mark absent data in the sources.
		if v <= 0 || v != float64(int64(v)) {
			return "", false
		}
		return pad(fmt.Sprintf("%d", int64(v))), true
	case int:
		if v <= 0 {
			return "", false
		}
		return pad(fmt.Sprintf("%d", v)), true
	case int64:
		if v <= 0 {
			return "", false
		}
		return pad(fmt.Sprintf("%d", v)), true
	case json.Number:
		return NormalizeCode(string(v))
	default:
		return "", false
	}
}

// pad left-pads numeric codes to the canonical width; non-numeric values
// pass through untouched.
func pad(s string) string {
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	for len(s) < codeWidth {
		s = "0" + s
	}
	return s
}
