package scoring

import (
	"regexp"
	"strings"
)

// RiskLevel classifies a listing's flood exposure from its free-text
// flood-zone description.
type RiskLevel string

const (
	RiskUndetermined RiskLevel = "undetermined"
	RiskLow          RiskLevel = "low"
	RiskModerate     RiskLevel = "moderate"
	RiskHigh         RiskLevel = "high"
	RiskCoastalHigh  RiskLevel = "coastal-high"
)

func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskUndetermined, RiskLow, RiskModerate, RiskHigh, RiskCoastalHigh:
		return true
	}
	return false
}

// Ordinal orders risk levels for sorting: unknown first, coastal worst.
func (r RiskLevel) Ordinal() int {
	switch r {
	case RiskLow:
		return 1
	case RiskModerate:
		return 2
	case RiskHigh:
		return 3
	case RiskCoastalHigh:
		return 4
	default:
		return 0
	}
}

// Score maps a risk level to a fixed [0,1] desirability. Unlike the other
// attributes this is not population-relative.
func (r RiskLevel) Score() float64 {
	switch r {
	case RiskLow:
		return 1
	case RiskModerate:
		return 0.6
	case RiskHigh:
		return 0.2
	case RiskCoastalHigh:
		return 0
	default:
		return 0.5
	}
}

func (r RiskLevel) Label() string {
	switch r {
	case RiskLow:
		return "Low"
	case RiskModerate:
		return "Moderate"
	case RiskHigh:
		return "High"
	case RiskCoastalHigh:
		return "Coastal High"
	default:
		return "Unknown"
	}
}

var zoneCodeRe = regexp.MustCompile(`(?i)zone\s*([a-z]+[0-9]*)`)

// ClassifyFloodRisk maps a flood-zone description to a RiskLevel. The FEMA
// zone code wins when present; free-text keywords are only consulted when no
// code is recognized, so "Zone X - major flood risk reported" still reads as
// low. Anything unrecognized resolves to RiskUndetermined, never an error.
func ClassifyFloodRisk(zone string) RiskLevel {
	zone = strings.TrimSpace(zone)
	if zone == "" || strings.EqualFold(zone, "N/A") {
		return RiskUndetermined
	}

	upper := strings.ToUpper(zone)

	if m := zoneCodeRe.FindStringSubmatch(zone); m != nil {
		switch code := strings.ToUpper(m[1]); code {
		case "V", "VE":
			return RiskCoastalHigh
		case "A", "AE", "AH", "AO", "AR", "A99":
			return RiskHigh
		case "B":
			return RiskModerate
		case "X", "C", "D":
			// Shaded X is the moderate 0.2%-annual-chance band.
			if strings.Contains(upper, "SHADED") && !strings.Contains(upper, "UNSHADED") {
				return RiskModerate
			}
			return RiskLow
		}
	}

	switch {
	case strings.Contains(upper, "MINIMAL"), strings.Contains(upper, "LOW RISK"):
		return RiskLow
	case strings.Contains(upper, "MINOR"), strings.Contains(upper, "MODERATE"):
		return RiskModerate
	case strings.Contains(upper, "MAJOR"), strings.Contains(upper, "SEVERE"),
		strings.Contains(upper, "EXTREME"), strings.Contains(upper, "HIGH RISK"):
		return RiskHigh
	case strings.Contains(upper, "COASTAL"):
		return RiskCoastalHigh
	}

	return RiskUndetermined
}
