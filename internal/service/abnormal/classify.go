// Package abnormal classifies reported lab values against textual
// reference ranges. Anything that cannot be evaluated confidently is
// reported as FlagUnknown, which is never abnormal.
package abnormal

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/jwalitptl/ed-orders/internal/model"
)

// Classify evaluates value against refRange. Recognized range shapes are
// "min-max", "<max" and ">min", with optional surrounding whitespace.
func Classify(value interface{}, refRange string) model.ResultFlag {
	refRange = strings.TrimSpace(refRange)
	if refRange == "" {
		return model.FlagUnknown
	}
	v, ok := ParseValue(value)
	if !ok {
		return model.FlagUnknown
	}

	switch refRange[0] {
	case '<':
		bound, ok := parseNumber(refRange[1:])
		if !ok {
			return model.FlagUnknown
		}
		if v >= bound {
			return model.FlagHigh
		}
		return model.FlagNormal
	case '>':
		bound, ok := parseNumber(refRange[1:])
		if !ok {
			return model.FlagUnknown
		}
		if v <= bound {
			return model.FlagLow
		}
		return model.FlagNormal
	}

	minRaw, maxRaw, found := strings.Cut(refRange, "-")
	if !found {
		return model.FlagUnknown
	}
	lo, okLo := parseNumber(minRaw)
	hi, okHi := parseNumber(maxRaw)
	if !okLo || !okHi {
		return model.FlagUnknown
	}
	switch {
	case v < lo:
		return model.FlagLow
	case v > hi:
		return model.FlagHigh
	}
	return model.FlagNormal
}

// IsAbnormal reports whether value falls outside refRange.
func IsAbnormal(value interface{}, refRange string) bool {
	return Classify(value, refRange).Abnormal()
}

// ParseValue converts a reported value to a number. Strings may carry a
// leading "<" or ">" qualifier, which is dropped.
func ParseValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimLeft(s, "<>")
		return parseNumber(s)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return finite(rv.Float())
	}
	return 0, false
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
