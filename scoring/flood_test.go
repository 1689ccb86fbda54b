package scoring

import "testing"

func TestClassifyFloodRisk(t *testing.T) {
	cases := []struct {
		zone string
		want RiskLevel
	}{
		{"", RiskUndetermined},
		{"N/A", RiskUndetermined},
		{"n/a", RiskUndetermined},
		{"Zone AE", RiskHigh},
		{"Zone A", RiskHigh},
		{"Zone A99", RiskHigh},
		{"Zone AO", RiskHigh},
		{"Zone X", RiskLow},
		{"Zone C", RiskLow},
		{"Zone D", RiskLow},
		{"Zone B", RiskModerate},
		{"Zone X (Shaded)", RiskModerate},
		{"Zone X (Unshaded)", RiskLow},
		{"ZONE X SHADED", RiskModerate},
		{"Zone VE", RiskCoastalHigh},
		{"Zone V", RiskCoastalHigh},
		{"zone ae", RiskHigh},
		{"FEMA Zone X - 500 year floodplain", RiskLow},
		{"Minimal risk", RiskLow},
		{"Low risk of flooding", RiskLow},
		{"Minor flooding possible", RiskModerate},
		{"Moderate flood factor", RiskModerate},
		{"Major flood risk", RiskHigh},
		{"Severe flooding reported", RiskHigh},
		{"Extreme flood factor", RiskHigh},
		{"High risk area", RiskHigh},
		{"Coastal flooding likely", RiskCoastalHigh},
		{"no flood info available", RiskUndetermined},
		// Zone code wins over contradicting free text.
		{"Zone X - Major flood risk reported", RiskLow},
		// Unrecognized code falls back to the keyword scan.
		{"Zone Q - severe flooding", RiskHigh},
	}

	for _, tc := range cases {
		if got := ClassifyFloodRisk(tc.zone); got != tc.want {
			t.Errorf("ClassifyFloodRisk(%q) = %s, want %s", tc.zone, got, tc.want)
		}
	}
}

func TestClassifyFloodRiskDeterministic(t *testing.T) {
	const zone = "Zone AE - high risk"
	first := ClassifyFloodRisk(zone)
	for i := 0; i < 100; i++ {
		if got := ClassifyFloodRisk(zone); got != first {
			t.Fatalf("classification changed between calls: %s then %s", first, got)
		}
	}
}

func TestRiskLevelScore(t *testing.T) {
	cases := []struct {
		level RiskLevel
		want  float64
	}{
		{RiskCoastalHigh, 0},
		{RiskHigh, 0.2},
		{RiskModerate, 0.6},
		{RiskLow, 1},
		{RiskUndetermined, 0.5},
	}
	for _, tc := range cases {
		if got := tc.level.Score(); got != tc.want {
			t.Errorf("%s.Score() = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestRiskLevelOrdinal(t *testing.T) {
	order := []RiskLevel{RiskUndetermined, RiskLow, RiskModerate, RiskHigh, RiskCoastalHigh}
	for i, level := range order {
		if got := level.Ordinal(); got != i {
			t.Errorf("%s.Ordinal() = %d, want %d", level, got, i)
		}
	}
}
