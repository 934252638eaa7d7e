package domain

// Tally is the per-hazard outcome of a scoring pass. The invariant
// Hit+Miss == valid reports of the hazard in the window always holds; Points
// is fully determined by the counters and the rule tables.
type Tally struct {
	Hit         int `json:"hit"`
	Miss        int `json:"miss"`
	Significant int `json:"ss"`
	Points      int `json:"pts"`
}

// Scoreboard maps each hazard to its tally. Every scored hazard is present,
// zero-valued when no reports matched, so consumers render zero rows instead
// of missing rows.
type Scoreboard map[Hazard]Tally

// EmptyScoreboard returns a scoreboard with a zero tally for every hazard.
func EmptyScoreboard() Scoreboard {
	board := make(Scoreboard, len(Hazards))
	for _, h := range Hazards {
		board[h] = Tally{}
	}
	return board
}

// Rules holds the fixed per-hazard point tables.
type Rules struct {
	Weight           map[Hazard]int
	SignificantBonus map[Hazard]int
	OutsidePenalty   map[Hazard]int
}

// DefaultRules returns the contest's point tables.
func DefaultRules() Rules {
	return Rules{
		Weight: map[Hazard]int{
			HazardHail:    5,
			HazardWind:    7,
			HazardTornado: 10,
		},
		SignificantBonus: map[Hazard]int{
			HazardHail:    2,
			HazardWind:    3,
			HazardTornado: 4,
		},
		OutsidePenalty: map[Hazard]int{
			HazardHail:    -3,
			HazardWind:    -3,
			HazardTornado: -3,
		},
	}
}

// Score rebuilds a scoreboard from the full report set. Reports with an
// unknown hazard or non-finite coordinates are skipped: one bad record must
// not void the scoreboard. A report inside the area earns the hazard weight
// plus the significant bonus when flagged SS; a report outside earns the
// outside penalty and a miss. The scoreboard is never partially updated;
// every pass starts from zero.
func (r Rules) Score(reports []Report, area ForecastArea) Scoreboard {
	board := EmptyScoreboard()

	for _, rep := range reports {
		hazard, ok := ParseHazard(rep.Hazard)
		if !ok || !rep.HasFiniteCoords() {
			continue
		}

		tally := board[hazard]
		if area.Contains(rep.Lon, rep.Lat) {
			tally.Hit++
			tally.Points += r.Weight[hazard]
			if ParseSeverity(rep.Severity) == SeveritySignificant {
				tally.Significant++
				tally.Points += r.SignificantBonus[hazard]
			}
		} else {
			tally.Miss++
			tally.Points += r.OutsidePenalty[hazard]
		}
		board[hazard] = tally
	}

	return board
}
