package record

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	ftInRe    = regexp.MustCompile(`(\d)\s*['’]\s*(\d{1,2})`)
	inchesRe  = regexp.MustCompile(`(?i)(\d{2,3})\s*(?:in|inches)\b`)
	lbRangeRe = regexp.MustCompile(`(?i)(\d{2,3})\s*[-–]\s*(\d{2,3})\s*(?:lb|lbs|pounds)\b`)
	lbRe      = regexp.MustCompile(`(?i)(\d{2,3})\s*(?:lb|lbs|pounds)\b`)
)

// ToInches converts height text to inches. Ranges resolve to the midpoint.
//
//	`5' 8"`           -> 68
//	`5'8" - 5'10"`    -> 69
//	`68 in`           -> 68
func ToInches(heightText string) (float64, bool) {
	s := strings.TrimSpace(heightText)
	if s == "" {
		return 0, false
	}

	pairs := ftInRe.FindAllStringSubmatch(s, -1)
	if len(pairs) >= 2 {
		var sum float64
		for _, p := range pairs[:2] {
			ft, _ := strconv.Atoi(p[1])
			in, _ := strconv.Atoi(p[2])
			sum += float64(ft*12 + in)
		}
		return sum / 2, true
	}
	if len(pairs) == 1 {
		ft, _ := strconv.Atoi(pairs[0][1])
		in, _ := strconv.Atoi(pairs[0][2])
		return float64(ft*12 + in), true
	}
	if m := inchesRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v, true
	}
	return 0, false
}

// ToPounds converts weight text to pounds. Ranges resolve to the midpoint.
//
//	`130 - 150 lbs` -> 140
//	`100 pounds`    -> 100
func ToPounds(weightText string) (float64, bool) {
	s := strings.TrimSpace(weightText)
	if s == "" {
		return 0, false
	}
	if m := lbRangeRe.FindStringSubmatch(s); m != nil {
		a, _ := strconv.ParseFloat(m[1], 64)
		b, _ := strconv.ParseFloat(m[2], 64)
		return (a + b) / 2, true
	}
	if m := lbRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		return v, true
	}
	return 0, false
}

// ClampLat bounds latitude to [-90, 90].
func ClampLat(v float64) float64 {
	return min(90, max(-90, v))
}

// ClampLon bounds longitude to [-180, 180].
func ClampLon(v float64) float64 {
	return min(180, max(-180, v))
}
