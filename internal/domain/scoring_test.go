package domain

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func testArea() ForecastArea {
	return NewForecastArea([]orb.Polygon{unitSquare()})
}

func TestScore_NoReports(t *testing.T) {
	board := DefaultRules().Score(nil, testArea())

	assert.Len(t, board, len(Hazards))
	for _, h := range Hazards {
		assert.Equal(t, Tally{}, board[h], "hazard %s should have a zero row, not a missing one", h)
	}
}

func TestScore_InsideReports(t *testing.T) {
	rules := DefaultRules()

	t.Run("normal severity earns the hazard weight", func(t *testing.T) {
		reports := []Report{{Hazard: "hail", Severity: "NOR", Lat: 5, Lon: 5}}
		board := rules.Score(reports, testArea())

		assert.Equal(t, Tally{Hit: 1, Points: 5}, board[HazardHail])
	})

	t.Run("significant severity adds the bonus", func(t *testing.T) {
		reports := []Report{{Hazard: "wind", Severity: "SS", Lat: 5, Lon: 5}}
		board := rules.Score(reports, testArea())

		assert.Equal(t, Tally{Hit: 1, Significant: 1, Points: 10}, board[HazardWind])
	})

	t.Run("severity matching is trimmed and case-insensitive", func(t *testing.T) {
		reports := []Report{{Hazard: "tornado", Severity: "  ss ", Lat: 5, Lon: 5}}
		board := rules.Score(reports, testArea())

		assert.Equal(t, 1, board[HazardTornado].Significant)
	})

	t.Run("unrecognized severity scores as normal", func(t *testing.T) {
		reports := []Report{{Hazard: "hail", Severity: "EXTREME", Lat: 5, Lon: 5}}
		board := rules.Score(reports, testArea())

		assert.Equal(t, Tally{Hit: 1, Points: 5}, board[HazardHail])
	})
}

func TestScore_OutsideReports(t *testing.T) {
	reports := []Report{{Hazard: "hail", Severity: "SS", Lat: 40, Lon: 40}}
	board := DefaultRules().Score(reports, testArea())

	// The SS flag earns nothing outside the polygons.
	assert.Equal(t, Tally{Miss: 1, Points: -3}, board[HazardHail])
}

func TestScore_TornadoExample(t *testing.T) {
	// One inside significant report plus one outside report:
	// 10 (weight) + 4 (SS bonus) - 3 (penalty) = 11.
	reports := []Report{
		{Hazard: "tornado", Severity: "SS", Lat: 5, Lon: 5},
		{Hazard: "tornado", Severity: "NOR", Lat: 40, Lon: 40},
	}
	board := DefaultRules().Score(reports, testArea())

	assert.Equal(t, Tally{Hit: 1, Miss: 1, Significant: 1, Points: 11}, board[HazardTornado])
}

func TestScore_EmptyPolygonSet(t *testing.T) {
	reports := []Report{
		{Hazard: "hail", Severity: "NOR", Lat: 5, Lon: 5},
		{Hazard: "wind", Severity: "SS", Lat: 5, Lon: 5},
	}
	board := DefaultRules().Score(reports, ForecastArea{})

	assert.Equal(t, Tally{Miss: 1, Points: -3}, board[HazardHail])
	assert.Equal(t, Tally{Miss: 1, Points: -3}, board[HazardWind])
}

func TestScore_SkipsBadRecords(t *testing.T) {
	reports := []Report{
		{Hazard: "flood", Severity: "NOR", Lat: 5, Lon: 5},          // unknown hazard
		{Hazard: "hail", Severity: "NOR", Lat: math.NaN(), Lon: 5},  // non-finite coordinate
		{Hazard: "hail", Severity: "NOR", Lat: 5, Lon: math.Inf(1)}, // non-finite coordinate
		{Hazard: "hail", Severity: "NOR", Lat: 5, Lon: 5},           // valid
	}
	board := DefaultRules().Score(reports, testArea())

	tally := board[HazardHail]
	assert.Equal(t, 1, tally.Hit+tally.Miss, "only the valid report counts")
	assert.Equal(t, Tally{Hit: 1, Points: 5}, tally)
}

func TestScore_HitPlusMissEqualsValidReports(t *testing.T) {
	reports := []Report{
		{Hazard: "wind", Severity: "NOR", Lat: 5, Lon: 5},
		{Hazard: "wind", Severity: "SS", Lat: 2, Lon: 8},
		{Hazard: "wind", Severity: "NOR", Lat: 40, Lon: 40},
		{Hazard: "WIND", Severity: "NOR", Lat: 41, Lon: 41}, // hazard parsing is case-insensitive
	}
	board := DefaultRules().Score(reports, testArea())

	tally := board[HazardWind]
	assert.Equal(t, 4, tally.Hit+tally.Miss)
	assert.Equal(t, 2, tally.Hit)
	assert.Equal(t, 2, tally.Miss)
}

func TestScore_NegativeTotalsNotClamped(t *testing.T) {
	reports := []Report{
		{Hazard: "hail", Severity: "NOR", Lat: 40, Lon: 40},
		{Hazard: "hail", Severity: "NOR", Lat: 41, Lon: 41},
		{Hazard: "hail", Severity: "NOR", Lat: 42, Lon: 42},
	}
	board := DefaultRules().Score(reports, testArea())

	assert.Equal(t, -9, board[HazardHail].Points)
}

func TestParseHazard(t *testing.T) {
	tests := []struct {
		in   string
		want Hazard
		ok   bool
	}{
		{"hail", HazardHail, true},
		{" Tornado ", HazardTornado, true},
		{"WIND", HazardWind, true},
		{"flood", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseHazard(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}
