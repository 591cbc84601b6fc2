// Package standings builds the general table of a zone from finished
// matches. Every category that counts for the general table is scored as a
// game of its own: 3 points for a win, 1 for a draw.
package standings

import (
	"fmt"
	"sort"

	"github.com/hectororviz/ligas-deportivas-V2-sub000/internal/models"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

type clubStats struct {
	models.Standing
	headToHeadPoints map[int64]int
}

// Calculate orders clubs by points, then points between the tied clubs, goal
// difference, goals for and finally name. Clubs without results are listed
// with zeroes.
func Calculate(zoneID int64, clubs []models.Club, results []models.ResultRow) ([]models.Standing, error) {
	stats := make(map[int64]*clubStats, len(clubs))
	for _, c := range clubs {
		stats[c.ID] = &clubStats{
			Standing:         models.Standing{ZoneID: zoneID, ClubID: c.ID, ClubName: c.Name},
			headToHeadPoints: make(map[int64]int),
		}
	}

	for _, r := range results {
		home, ok := stats[r.HomeClubID]
		if !ok {
			return nil, fmt.Errorf("match %d: home club %d is not in zone %d", r.MatchID, r.HomeClubID, zoneID)
		}
		away, ok := stats[r.AwayClubID]
		if !ok {
			return nil, fmt.Errorf("match %d: away club %d is not in zone %d", r.MatchID, r.AwayClubID, zoneID)
		}
		apply(home, r.AwayClubID, r.HomeScore, r.AwayScore)
		apply(away, r.HomeClubID, r.AwayScore, r.HomeScore)
	}

	ordered := make([]*clubStats, 0, len(stats))
	for _, c := range stats {
		ordered = append(ordered, c)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Points != ordered[j].Points {
			return ordered[i].Points > ordered[j].Points
		}
		return ordered[i].ClubName < ordered[j].ClubName
	})

	sortByTiebreakers(ordered)

	table := make([]models.Standing, 0, len(ordered))
	for i, c := range ordered {
		c.Position = i + 1
		c.GoalDiff = c.GoalsFor - c.GoalsAgainst
		table = append(table, c.Standing)
	}
	return table, nil
}

func apply(c *clubStats, opponentID, goalsFor, goalsAgainst int64) {
	c.Played++
	c.GoalsFor += goalsFor
	c.GoalsAgainst += goalsAgainst

	switch {
	case goalsFor > goalsAgainst:
		c.Won++
		c.Points += pointsWin
		c.headToHeadPoints[opponentID] += pointsWin
	case goalsFor == goalsAgainst:
		c.Drawn++
		c.Points += pointsDraw
		c.headToHeadPoints[opponentID] += pointsDraw
	default:
		c.Lost++
	}
}

func sortByTiebreakers(ordered []*clubStats) {
	if len(ordered) < 2 {
		return
	}

	start := 0
	for start < len(ordered) {
		end := start + 1
		for end < len(ordered) && ordered[end].Points == ordered[start].Points {
			end++
		}

		if end-start > 1 {
			group := ordered[start:end]
			groupSet := make(map[int64]struct{}, len(group))
			for _, c := range group {
				groupSet[c.ClubID] = struct{}{}
			}

			sort.SliceStable(group, func(i, j int) bool {
				h2hI := headToHeadPoints(group[i], groupSet)
				h2hJ := headToHeadPoints(group[j], groupSet)
				if h2hI != h2hJ {
					return h2hI > h2hJ
				}
				diffI := group[i].GoalsFor - group[i].GoalsAgainst
				diffJ := group[j].GoalsFor - group[j].GoalsAgainst
				if diffI != diffJ {
					return diffI > diffJ
				}
				if group[i].GoalsFor != group[j].GoalsFor {
					return group[i].GoalsFor > group[j].GoalsFor
				}
				return group[i].ClubName < group[j].ClubName
			})
		}

		start = end
	}
}

func headToHeadPoints(c *clubStats, group map[int64]struct{}) int {
	total := 0
	for opponentID, pts := range c.headToHeadPoints {
		if _, ok := group[opponentID]; ok {
			total += pts
		}
	}
	return total
}
