// Package fixture builds round-robin schedules for the clubs of a zone.
// Everything here is pure: no storage, no clock, and the only randomness is
// the seed resolution when a shuffle is requested without one.
package fixture

import (
	"errors"
	"slices"
)

type Leg string

const (
	LegFirst  Leg = "FIRST"
	LegSecond Leg = "SECOND"
)

var (
	ErrTooFewTeams   = errors.New("at least two teams are required")
	ErrDuplicateTeam = errors.New("team list contains duplicates")
)

type Options struct {
	DoubleRound bool
	Shuffle     bool
	Seed        *int64
}

type Pairing struct {
	Round      int
	HomeTeamID int64
	AwayTeamID int64
}

type Bye struct {
	Round  int
	TeamID int64
}

// Schedule is the abstract fixture of one zone. TotalRounds counts the rounds
// of a single leg; second leg rounds continue after it.
type Schedule struct {
	FirstLeg      []Pairing
	SecondLeg     []Pairing
	FirstLegByes  []Bye
	SecondLegByes []Bye
	TotalRounds   int
	DoubleRound   bool
	Seed          *int64
}

// TotalMatchdays is the number of rounds across every generated leg.
func (s Schedule) TotalMatchdays() int {
	if s.DoubleRound {
		return s.TotalRounds * 2
	}
	return s.TotalRounds
}

// Build generates the round-robin schedule for teams using the circle method.
// The pairing-to-round assignment is fixed for a given input order and seed.
func Build(teams []int64, opts Options) (Schedule, error) {
	if len(teams) < 2 {
		return Schedule{}, ErrTooFewTeams
	}
	if len(UniqueTeams(teams)) != len(teams) {
		return Schedule{}, ErrDuplicateTeam
	}

	order := slices.Clone(teams)
	var seed *int64
	if opts.Shuffle || opts.Seed != nil {
		resolved := NewSeed()
		if opts.Seed != nil {
			resolved = *opts.Seed
		}
		order = Shuffle(order, resolved)
		seed = &resolved
	}

	pairs, byes, rounds := buildLeg(order)
	schedule := Schedule{
		FirstLeg:     pairs,
		FirstLegByes: byes,
		TotalRounds:  rounds,
		DoubleRound:  opts.DoubleRound,
		Seed:         seed,
	}
	if opts.DoubleRound {
		schedule.SecondLeg, schedule.SecondLegByes = mirrorLeg(pairs, byes, rounds)
	}
	return schedule, nil
}

// buildLeg pads odd lists with a nil slot at the pivot, so the team paired
// with the pivot sits out that round.
func buildLeg(teams []int64) ([]Pairing, []Bye, int) {
	working := make([]*int64, 0, len(teams)+1)
	if len(teams)%2 == 1 {
		working = append(working, nil)
	}
	for i := range teams {
		working = append(working, &teams[i])
	}

	rounds := len(working) - 1
	half := len(working) / 2
	pairs := make([]Pairing, 0, rounds*half)
	var byes []Bye

	for round := 0; round < rounds; round++ {
		for i := 0; i < half; i++ {
			left := working[i]
			right := working[len(working)-1-i]
			if left == nil {
				byes = append(byes, Bye{Round: round + 1, TeamID: *right})
				continue
			}
			if right == nil {
				byes = append(byes, Bye{Round: round + 1, TeamID: *left})
				continue
			}
			home, away := *left, *right
			if round%2 == 1 {
				home, away = away, home
			}
			pairs = append(pairs, Pairing{
				Round:      round + 1,
				HomeTeamID: home,
				AwayTeamID: away,
			})
		}
		rotateTeams(working)
	}

	return pairs, byes, rounds
}

// rotateTeams keeps index 0 fixed and moves the last slot to index 1.
func rotateTeams(teams []*int64) {
	if len(teams) <= 2 {
		return
	}
	last := teams[len(teams)-1]
	copy(teams[2:], teams[1:len(teams)-1])
	teams[1] = last
}

func mirrorLeg(pairs []Pairing, byes []Bye, offset int) ([]Pairing, []Bye) {
	mirrored := make([]Pairing, 0, len(pairs))
	for _, p := range pairs {
		mirrored = append(mirrored, Pairing{
			Round:      p.Round + offset,
			HomeTeamID: p.AwayTeamID,
			AwayTeamID: p.HomeTeamID,
		})
	}
	var mirroredByes []Bye
	for _, b := range byes {
		mirroredByes = append(mirroredByes, Bye{Round: b.Round + offset, TeamID: b.TeamID})
	}
	return mirrored, mirroredByes
}

// UniqueTeams drops repeated ids, keeping the first occurrence of each.
func UniqueTeams(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
