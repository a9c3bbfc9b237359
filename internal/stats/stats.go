// Package stats derives per-team aggregates from the player collection
// and the tournament config. Everything here is a pure function of its
// inputs: no state, no randomness, safe to call on every render.
package stats

import (
	"sort"

	"github.com/abhishekchandaliya/IIID-Sports-Auction/internal/models"
)

// TeamStats is the derived view of one team.
type TeamStats struct {
	Team           string          `json:"team"`
	Roster         []models.Player `json:"roster"`
	Spent          int             `json:"spent"`
	Count          int             `json:"count"`
	Remaining      int             `json:"remaining"`
	CategoryCounts map[string]int  `json:"category_counts"`
}

// OverBudget reports whether the team has spent past its purse.
// Remaining is deliberately unclamped so consumers can surface this.
func (s TeamStats) OverBudget() bool {
	return s.Remaining < 0
}

// Compute derives the stats for one team. The roster is ordered by
// player id, so output is identical for any permutation of players.
func Compute(team string, players []models.Player, cfg models.TournamentConfig, categories []string) TeamStats {
	var roster []models.Player
	for _, p := range players {
		if p.Team == team {
			roster = append(roster, p)
		}
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].ID < roster[j].ID })

	spent := 0
	for _, p := range roster {
		spent += p.Price
	}

	counts := make(map[string]int, len(categories))
	for _, cat := range categories {
		n := 0
		for _, p := range roster {
			if p.Rating(cat).Plays() {
				n++
			}
		}
		counts[cat] = n
	}

	return TeamStats{
		Team:           team,
		Roster:         roster,
		Spent:          spent,
		Count:          len(roster),
		Remaining:      cfg.PurseLimit - spent,
		CategoryCounts: counts,
	}
}

// Leaderboard computes stats for every configured team, in roster
// order.
func Leaderboard(teams []string, players []models.Player, cfg models.TournamentConfig, categories []string) []TeamStats {
	board := make([]TeamStats, len(teams))
	for i, team := range teams {
		board[i] = Compute(team, players, cfg, categories)
	}
	return board
}

// Overview holds the auction-wide dashboard numbers.
type Overview struct {
	TotalSold   int `json:"total_sold"`
	TotalUnsold int `json:"total_unsold"`
	HighestBid  int `json:"highest_bid"`
}

// ComputeOverview derives the dashboard aggregates.
func ComputeOverview(players []models.Player) Overview {
	var o Overview
	for _, p := range players {
		if p.Sold() {
			o.TotalSold++
			if p.Price > o.HighestBid {
				o.HighestBid = p.Price
			}
		} else {
			o.TotalUnsold++
		}
	}
	return o
}
