package fixture

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamRange(n int) []int64 {
	teams := make([]int64, n)
	for i := range teams {
		teams[i] = int64(i + 1)
	}
	return teams
}

func pairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

func TestBuildEvenTeamCounts(t *testing.T) {
	for n := 2; n <= 16; n += 2 {
		t.Run(fmt.Sprintf("teams=%d", n), func(t *testing.T) {
			schedule, err := Build(teamRange(n), Options{})
			require.NoError(t, err)

			assert.Equal(t, n-1, schedule.TotalRounds)
			assert.Empty(t, schedule.FirstLegByes)
			assert.Len(t, schedule.FirstLeg, n*(n-1)/2)

			seenPairs := make(map[string]int)
			perRound := make(map[int]map[int64]int)
			for _, p := range schedule.FirstLeg {
				seenPairs[pairKey(p.HomeTeamID, p.AwayTeamID)]++
				if perRound[p.Round] == nil {
					perRound[p.Round] = make(map[int64]int)
				}
				perRound[p.Round][p.HomeTeamID]++
				perRound[p.Round][p.AwayTeamID]++
			}
			for key, count := range seenPairs {
				assert.Equalf(t, 1, count, "pair %s played %d times", key, count)
			}
			assert.Len(t, seenPairs, n*(n-1)/2)
			for round, teams := range perRound {
				assert.Lenf(t, teams, n, "round %d does not include every team", round)
				for team, count := range teams {
					assert.Equalf(t, 1, count, "team %d plays %d times in round %d", team, count, round)
				}
			}
		})
	}
}

func TestBuildOddTeamCounts(t *testing.T) {
	for n := 3; n <= 15; n += 2 {
		t.Run(fmt.Sprintf("teams=%d", n), func(t *testing.T) {
			schedule, err := Build(teamRange(n), Options{})
			require.NoError(t, err)

			assert.Equal(t, n, schedule.TotalRounds)
			require.Len(t, schedule.FirstLegByes, n)

			byesPerRound := make(map[int]int)
			byesPerTeam := make(map[int64]int)
			for _, b := range schedule.FirstLegByes {
				byesPerRound[b.Round]++
				byesPerTeam[b.TeamID]++
			}
			for round := 1; round <= n; round++ {
				assert.Equalf(t, 1, byesPerRound[round], "round %d byes", round)
			}
			for _, team := range teamRange(n) {
				assert.Equalf(t, 1, byesPerTeam[team], "team %d byes", team)
			}

			seenPairs := make(map[string]int)
			for _, p := range schedule.FirstLeg {
				seenPairs[pairKey(p.HomeTeamID, p.AwayTeamID)]++
			}
			assert.Len(t, seenPairs, n*(n-1)/2)
			for key, count := range seenPairs {
				assert.Equalf(t, 1, count, "pair %s played %d times", key, count)
			}
		})
	}
}

func TestBuildFourTeamsWithoutShuffle(t *testing.T) {
	schedule, err := Build([]int64{1, 2, 3, 4}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, schedule.TotalRounds)
	assert.Nil(t, schedule.Seed)
	assert.Empty(t, schedule.FirstLegByes)
	assert.Empty(t, schedule.SecondLeg)
	assert.Equal(t, []Pairing{
		{Round: 1, HomeTeamID: 1, AwayTeamID: 4},
		{Round: 1, HomeTeamID: 2, AwayTeamID: 3},
		{Round: 2, HomeTeamID: 3, AwayTeamID: 1},
		{Round: 2, HomeTeamID: 2, AwayTeamID: 4},
		{Round: 3, HomeTeamID: 1, AwayTeamID: 2},
		{Round: 3, HomeTeamID: 3, AwayTeamID: 4},
	}, schedule.FirstLeg)
}

func TestBuildFiveTeamsLastTeamRestsFirst(t *testing.T) {
	schedule, err := Build([]int64{1, 2, 3, 4, 5}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 5, schedule.TotalRounds)
	require.NotEmpty(t, schedule.FirstLegByes)
	assert.Equal(t, Bye{Round: 1, TeamID: 5}, schedule.FirstLegByes[0])

	perRound := make(map[int]int)
	for _, p := range schedule.FirstLeg {
		perRound[p.Round]++
	}
	for round := 1; round <= 5; round++ {
		assert.Equalf(t, 2, perRound[round], "round %d pairings", round)
	}
}

func TestBuildTwoTeams(t *testing.T) {
	schedule, err := Build([]int64{7, 9}, Options{DoubleRound: true})
	require.NoError(t, err)

	assert.Equal(t, 1, schedule.TotalRounds)
	assert.Equal(t, 2, schedule.TotalMatchdays())
	assert.Equal(t, []Pairing{{Round: 1, HomeTeamID: 7, AwayTeamID: 9}}, schedule.FirstLeg)
	assert.Equal(t, []Pairing{{Round: 2, HomeTeamID: 9, AwayTeamID: 7}}, schedule.SecondLeg)
}

func TestBuildDoubleRoundMirrorsFirstLeg(t *testing.T) {
	for _, n := range []int{4, 7} {
		schedule, err := Build(teamRange(n), Options{DoubleRound: true})
		require.NoError(t, err)
		require.Len(t, schedule.SecondLeg, len(schedule.FirstLeg))
		require.Len(t, schedule.SecondLegByes, len(schedule.FirstLegByes))

		for i, p := range schedule.FirstLeg {
			assert.Equal(t, Pairing{
				Round:      p.Round + schedule.TotalRounds,
				HomeTeamID: p.AwayTeamID,
				AwayTeamID: p.HomeTeamID,
			}, schedule.SecondLeg[i])
		}
		for i, b := range schedule.FirstLegByes {
			assert.Equal(t, Bye{Round: b.Round + schedule.TotalRounds, TeamID: b.TeamID}, schedule.SecondLegByes[i])
		}
	}
}

func TestBuildSameSeedSameSchedule(t *testing.T) {
	seed := int64(424242)
	teams := teamRange(9)

	first, err := Build(teams, Options{Shuffle: true, DoubleRound: true, Seed: &seed})
	require.NoError(t, err)
	second, err := Build(teams, Options{Shuffle: true, DoubleRound: true, Seed: &seed})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.NotNil(t, first.Seed)
	assert.Equal(t, seed, *first.Seed)
}

func TestBuildResolvedSeedReproducesSchedule(t *testing.T) {
	teams := teamRange(10)

	generated, err := Build(teams, Options{Shuffle: true})
	require.NoError(t, err)
	require.NotNil(t, generated.Seed)

	replayed, err := Build(teams, Options{Shuffle: true, Seed: generated.Seed})
	require.NoError(t, err)
	assert.Equal(t, generated.FirstLeg, replayed.FirstLeg)
	assert.Equal(t, generated.FirstLegByes, replayed.FirstLegByes)
}

func TestBuildSeedWithoutShuffleStillShuffles(t *testing.T) {
	seed := int64(99)
	teams := teamRange(6)

	withSeed, err := Build(teams, Options{Seed: &seed})
	require.NoError(t, err)
	shuffled, err := Build(Shuffle(teams, seed), Options{})
	require.NoError(t, err)

	require.NotNil(t, withSeed.Seed)
	assert.Equal(t, shuffled.FirstLeg, withSeed.FirstLeg)
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	teams := []int64{10, 20, 30, 40, 50}
	seed := int64(5)
	_, err := Build(teams, Options{Shuffle: true, Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30, 40, 50}, teams)
}

func TestBuildRejectsInvalidTeams(t *testing.T) {
	tests := []struct {
		name  string
		teams []int64
		want  error
	}{
		{name: "empty", teams: nil, want: ErrTooFewTeams},
		{name: "single", teams: []int64{1}, want: ErrTooFewTeams},
		{name: "duplicates", teams: []int64{1, 2, 2}, want: ErrDuplicateTeam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.teams, Options{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUniqueTeamsKeepsFirstOccurrence(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, UniqueTeams([]int64{3, 1, 3, 2, 1}))
}

func TestMatchdaysLayout(t *testing.T) {
	schedule, err := Build([]int64{1, 2, 3}, Options{DoubleRound: true})
	require.NoError(t, err)

	days := schedule.Matchdays()
	require.Len(t, days, 6)
	for i, day := range days {
		assert.Equal(t, i+1, day.Matchday)
		assert.Len(t, day.Pairings, 1)
		require.NotNil(t, day.ByeTeamID)
		if i < 3 {
			assert.Equal(t, LegFirst, day.Leg)
		} else {
			assert.Equal(t, LegSecond, day.Leg)
			assert.Equal(t, *days[i-3].ByeTeamID, *day.ByeTeamID)
		}
	}
	assert.Equal(t, int64(3), *days[0].ByeTeamID)
}
