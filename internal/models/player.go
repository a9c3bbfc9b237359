package models

import (
	"strings"
	"time"
)

// Grade is a per-category skill grade. GradeNone ("0") marks a player
// who does not play that category.
type Grade string

const (
	GradeNone Grade = "0"
	GradeA    Grade = "A"
	GradeB    Grade = "B"
	GradeC    Grade = "C"
)

// ParseGrade normalizes a raw spreadsheet value to the canonical grade
// scale. Unrecognized or empty values map to GradeNone, never an error.
func ParseGrade(raw string) Grade {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "A":
		return GradeA
	case "B":
		return GradeB
	case "C":
		return GradeC
	default:
		return GradeNone
	}
}

// Plays reports whether the grade marks actual participation.
func (g Grade) Plays() bool {
	return g != GradeNone && g != ""
}

// Player is one auction participant. IDs are assigned at import time
// and never reused; an empty Team means the player is unsold.
//
// Invariant: Team == "" implies Price == 0 and CaptainFor == "".
type Player struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Team        string           `json:"team,omitempty"`
	Price       int              `json:"price"`
	Ratings     map[string]Grade `json:"ratings"`
	ContactInfo string           `json:"contact_info"`
	CaptainFor  string           `json:"captain_for,omitempty"`
	SoldAt      *time.Time       `json:"sold_at,omitempty"`
}

// Sold reports whether the player is assigned to a team.
func (p Player) Sold() bool {
	return p.Team != ""
}

// Rating returns the player's grade for a category, defaulting to
// GradeNone for categories that were never imported.
func (p Player) Rating(category string) Grade {
	if g, ok := p.Ratings[category]; ok && g != "" {
		return g
	}
	return GradeNone
}
