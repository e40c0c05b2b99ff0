package model

import "time"

// SessionView is the read-only projection served by status queries. Vote
// tallies are exposed per candidate only; voter identities stay private to
// avoid pressure on live groups.
type SessionView struct {
	ID            string         `json:"id"`
	GuildID       string         `json:"guild_id"`
	Name          string         `json:"name"`
	FractalNumber string         `json:"fractal_number"`
	GroupNumber   string         `json:"group_number"`
	FacilitatorID string         `json:"facilitator_id"`
	Status        SessionStatus  `json:"status"`
	CurrentLevel  int            `json:"current_level"`
	Threshold     int            `json:"threshold"`
	Participants  []string       `json:"participants"`
	Candidates    []string       `json:"candidates"`
	Tally         map[string]int `json:"tally"`
	VotesCast     int            `json:"votes_cast"`
	Ranks         []RankEntry    `json:"ranks"`
	CreatedAt     time.Time      `json:"created_at"`
	LastActivity  time.Time      `json:"last_activity_at"`
}

// View snapshots the session. Slices and maps are copied so the caller can
// hold the result after the session lock is released.
func (s *Session) View() SessionView {
	return SessionView{
		ID:            s.ID,
		GuildID:       s.GuildID,
		Name:          s.Name,
		FractalNumber: s.FractalNumber,
		GroupNumber:   s.GroupNumber,
		FacilitatorID: s.FacilitatorID,
		Status:        s.Status,
		CurrentLevel:  s.CurrentLevel,
		Threshold:     s.Threshold(),
		Participants:  append([]string(nil), s.Participants...),
		Candidates:    append([]string(nil), s.Candidates...),
		Tally:         s.Tally(),
		VotesCast:     len(s.Votes),
		Ranks:         append([]RankEntry(nil), s.Ranks...),
		CreatedAt:     s.CreatedAt,
		LastActivity:  s.LastActivity,
	}
}
