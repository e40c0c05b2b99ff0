package model

import "time"

// HistoryEntry is one row of a completed session's final ordering.
// Place is 1-based by final standing (1 = highest level won).
type HistoryEntry struct {
	Place       int    `json:"place"`
	MemberID    string `json:"member_id"`
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
	Respect     int    `json:"respect"`
}

// HistoryRecord is the immutable snapshot of a finished session. Created
// exactly once at completion (or abort, when configured) and never mutated.
type HistoryRecord struct {
	ID              string         `json:"id"`
	SessionID       string         `json:"session_id"`
	GuildID         string         `json:"guild_id"`
	GroupName       string         `json:"group_name"`
	FractalNumber   string         `json:"fractal_number"`
	GroupNumber     string         `json:"group_number"`
	FacilitatorID   string         `json:"facilitator_id"`
	FacilitatorName string         `json:"facilitator_name"`
	Entries         []HistoryEntry `json:"entries"`
	Aborted         bool           `json:"aborted"`
	CompletedAt     time.Time      `json:"completed_at"`
}

// EntryFor returns the record's entry for a member, if present.
func (r *HistoryRecord) EntryFor(memberID string) (HistoryEntry, bool) {
	for _, e := range r.Entries {
		if e.MemberID == memberID {
			return e, true
		}
	}
	return HistoryEntry{}, false
}

// Participation is one history line of a member's career, oldest first.
type Participation struct {
	RecordID    string    `json:"record_id"`
	GroupName   string    `json:"group_name"`
	Place       int       `json:"place"`
	Level       int       `json:"level"`
	Respect     int       `json:"respect"`
	CompletedAt time.Time `json:"completed_at"`
}

// MemberStats are cumulative figures over the full history log.
type MemberStats struct {
	MemberID       string          `json:"member_id"`
	Participations int             `json:"participations"`
	TotalRespect   int             `json:"total_respect"`
	FirstPlace     int             `json:"first_place"`
	SecondPlace    int             `json:"second_place"`
	ThirdPlace     int             `json:"third_place"`
	AvgRespect     float64         `json:"avg_respect"`
	History        []Participation `json:"history"`
}

// LeaderboardEntry is one row of the cumulative Respect leaderboard.
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	MemberID       string `json:"member_id"`
	DisplayName    string `json:"display_name"`
	TotalRespect   int    `json:"total_respect"`
	Participations int    `json:"participations"`
}
