package fixture

// MatchdayPairing is a pairing as shown to clients reviewing a preview.
type MatchdayPairing struct {
	HomeTeamID int64 `json:"homeTeamId"`
	AwayTeamID int64 `json:"awayTeamId"`
}

type Matchday struct {
	Matchday  int               `json:"matchday"`
	Leg       Leg               `json:"leg"`
	Pairings  []MatchdayPairing `json:"pairings"`
	ByeTeamID *int64            `json:"byeTeamId,omitempty"`
}

// Matchdays flattens the schedule into one entry per round, in round order.
func (s Schedule) Matchdays() []Matchday {
	days := make([]Matchday, s.TotalMatchdays())
	for i := range days {
		leg := LegFirst
		if i >= s.TotalRounds {
			leg = LegSecond
		}
		days[i] = Matchday{Matchday: i + 1, Leg: leg, Pairings: []MatchdayPairing{}}
	}

	place := func(pairs []Pairing, byes []Bye) {
		for _, p := range pairs {
			day := &days[p.Round-1]
			day.Pairings = append(day.Pairings, MatchdayPairing{HomeTeamID: p.HomeTeamID, AwayTeamID: p.AwayTeamID})
		}
		for _, b := range byes {
			teamID := b.TeamID
			days[b.Round-1].ByeTeamID = &teamID
		}
	}
	place(s.FirstLeg, s.FirstLegByes)
	if s.DoubleRound {
		place(s.SecondLeg, s.SecondLegByes)
	}
	return days
}
