package models

import "time"

// ActivityType classifies an activity-log entry.
type ActivityType string

const (
	ActivitySale       ActivityType = "sale"
	ActivityRevert     ActivityType = "revert"
	ActivityCorrection ActivityType = "correction"
	ActivityCaptain    ActivityType = "captain"
)

// ActivityDetails mirrors the player fields a transition changed.
type ActivityDetails struct {
	PlayerID   int    `json:"player_id"`
	PlayerName string `json:"player_name"`
	Team       string `json:"team,omitempty"`
	Price      int    `json:"price,omitempty"`
	Category   string `json:"category,omitempty"`
}

// ActivityEntry is one append-only audit record. Entries are immutable
// once written; the log itself is never truncated by the core.
type ActivityEntry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      ActivityType    `json:"type"`
	Message   string          `json:"message"`
	Details   ActivityDetails `json:"details"`
}
