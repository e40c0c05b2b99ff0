package model

import (
	"time"

	"github.com/google/uuid"

	"fractal-respect-game/internal/domain"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionAborted   SessionStatus = "aborted"
)

// Vote is one participant's current pick for the level being contested.
// CastAt feeds force-round tie-breaking, so it must survive re-votes only
// when the pick actually changes hands.
type Vote struct {
	CandidateID string    `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
}

// RankEntry records one resolved level: who won it and the Respect it pays.
type RankEntry struct {
	Level    int    `json:"level"`
	MemberID string `json:"member_id"`
	Respect  int    `json:"respect"`
}

// Session is the aggregate root for one running Respect Game instance.
// All mutation goes through its methods; callers are expected to hold the
// per-session lock while mutating (see usecase package).
type Session struct {
	ID            string          `json:"id"`
	GuildID       string          `json:"guild_id"`
	Name          string          `json:"name"`
	FractalNumber string          `json:"fractal_number"`
	GroupNumber   string          `json:"group_number"`
	FacilitatorID string          `json:"facilitator_id"`
	Participants  []string        `json:"participants"`
	Candidates    []string        `json:"candidates"`
	CurrentLevel  int             `json:"current_level"`
	Ranks         []RankEntry     `json:"ranks"`
	Votes         map[string]Vote `json:"votes"`
	Status        SessionStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	LastActivity  time.Time       `json:"last_activity_at"`
}

// NewSession validates the group and starts it at level len(participants),
// with every participant an unranked candidate.
func NewSession(id, guildID, name string, facilitatorID string, participants []string, fractalNumber, groupNumber string) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if guildID == "" || facilitatorID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if len(participants) < MinGroupSize || len(participants) > MaxGroupSize {
		return nil, domain.ErrInvalidGroupSize
	}
	seen := make(map[string]struct{}, len(participants))
	for _, p := range participants {
		if p == "" {
			return nil, domain.ErrInvalidArgument
		}
		if _, dup := seen[p]; dup {
			return nil, domain.ErrDuplicateParticipant
		}
		seen[p] = struct{}{}
	}
	if _, ok := seen[facilitatorID]; !ok {
		return nil, domain.ErrNotAParticipant
	}

	now := time.Now()
	s := &Session{
		ID:            id,
		GuildID:       guildID,
		Name:          name,
		FractalNumber: fractalNumber,
		GroupNumber:   groupNumber,
		FacilitatorID: facilitatorID,
		Participants:  append([]string(nil), participants...),
		Candidates:    append([]string(nil), participants...),
		CurrentLevel:  len(participants),
		Ranks:         make([]RankEntry, 0, len(participants)),
		Votes:         make(map[string]Vote),
		Status:        SessionActive,
		CreatedAt:     now,
		LastActivity:  now,
	}
	return s, nil
}

func (s *Session) Touch() { s.LastActivity = time.Now() }

func (s *Session) IsParticipant(memberID string) bool {
	for _, p := range s.Participants {
		if p == memberID {
			return true
		}
	}
	return false
}

func (s *Session) IsCandidate(memberID string) bool {
	for _, c := range s.Candidates {
		if c == memberID {
			return true
		}
	}
	return false
}

func (s *Session) IsRanked(memberID string) bool {
	for _, r := range s.Ranks {
		if r.MemberID == memberID {
			return true
		}
	}
	return false
}

// Threshold is the convergence quorum for the current level: a strict
// majority of the candidates remaining, T(n) = n/2 + 1.
func (s *Session) Threshold() int {
	return len(s.Candidates)/2 + 1
}

// Tally counts current votes per candidate.
func (s *Session) Tally() map[string]int {
	counts := make(map[string]int, len(s.Candidates))
	for _, v := range s.Votes {
		counts[v.CandidateID]++
	}
	return counts
}

// CastVote records (or overwrites) a participant's vote for the current
// level. Re-voting for the same candidate keeps the original timestamp so a
// double click cannot improve tie-break position.
func (s *Session) CastVote(voterID, candidateID string, at time.Time) error {
	switch s.Status {
	case SessionActive:
	case SessionPaused:
		return domain.ErrSessionNotActive
	case SessionCompleted:
		return domain.ErrSessionCompleted
	default:
		return domain.ErrSessionNotActive
	}
	if !s.IsParticipant(voterID) {
		return domain.ErrNotAParticipant
	}
	if voterID == candidateID || !s.IsCandidate(candidateID) {
		return domain.ErrInvalidCandidate
	}
	if prev, ok := s.Votes[voterID]; ok && prev.CandidateID == candidateID {
		return nil
	}
	s.Votes[voterID] = Vote{CandidateID: candidateID, CastAt: at}
	s.Touch()
	return nil
}

// Converged reports the candidate, if any, whose tally has reached the
// threshold. Candidates are scanned in pool order so the result is
// deterministic even if an override manufactured a multi-winner tally.
func (s *Session) Converged() (string, bool) {
	counts := s.Tally()
	t := s.Threshold()
	for _, c := range s.Candidates {
		if counts[c] >= t {
			return c, true
		}
	}
	return "", false
}

// PluralityWinner picks the candidate with the most votes; ties break toward
// the candidate whose earliest supporting vote landed first.
func (s *Session) PluralityWinner() (string, error) {
	if len(s.Candidates) == 0 {
		return "", domain.ErrNoCandidates
	}
	if len(s.Votes) == 0 {
		return "", domain.ErrNoVotes
	}
	counts := s.Tally()
	earliest := make(map[string]time.Time, len(counts))
	for _, v := range s.Votes {
		if cur, ok := earliest[v.CandidateID]; !ok || v.CastAt.Before(cur) {
			earliest[v.CandidateID] = v.CastAt
		}
	}
	var winner string
	var best int
	for _, c := range s.Candidates {
		n := counts[c]
		if n == 0 {
			continue
		}
		if winner == "" || n > best || (n == best && earliest[c].Before(earliest[winner])) {
			winner, best = c, n
		}
	}
	if winner == "" {
		return "", domain.ErrNoVotes
	}
	return winner, nil
}

// ResolveRound assigns the current level to winner, clears the level's
// votes and advances. A lone remaining candidate can never be voted past the
// threshold by the others, so it is auto-assigned the final level. When no
// candidates remain the session is completed.
func (s *Session) ResolveRound(winnerID string) error {
	if len(s.Candidates) == 0 {
		return domain.ErrNoCandidates
	}
	if !s.IsCandidate(winnerID) {
		return domain.ErrInvalidCandidate
	}
	s.assignRank(winnerID)
	if len(s.Candidates) == 1 {
		s.assignRank(s.Candidates[0])
	}
	if len(s.Candidates) == 0 {
		s.Status = SessionCompleted
	}
	s.Touch()
	return nil
}

func (s *Session) assignRank(memberID string) {
	s.Ranks = append(s.Ranks, RankEntry{
		Level:    s.CurrentLevel,
		MemberID: memberID,
		Respect:  RespectForLevel(s.CurrentLevel),
	})
	s.Candidates = removeID(s.Candidates, memberID)
	s.Votes = make(map[string]Vote)
	s.CurrentLevel--
}

// AddMember inserts a member into participants and the candidate pool.
// Only legal before the first rank lands: afterwards the level sequence could
// no longer stay contiguous. The level renormalizes to the pool size.
func (s *Session) AddMember(memberID string) error {
	if memberID == "" {
		return domain.ErrInvalidArgument
	}
	if s.IsParticipant(memberID) {
		return domain.ErrDuplicateParticipant
	}
	if len(s.Participants) >= MaxGroupSize {
		return domain.ErrGroupFull
	}
	if len(s.Ranks) > 0 {
		return domain.ErrRanksAssigned
	}
	s.Participants = append(s.Participants, memberID)
	s.Candidates = append(s.Candidates, memberID)
	s.CurrentLevel = len(s.Candidates)
	s.Touch()
	return nil
}

// RemoveMember deletes a member from participants, candidates and any votes
// referencing them (as voter or pick). Already-ranked members stay ranked.
func (s *Session) RemoveMember(memberID string) error {
	if !s.IsParticipant(memberID) {
		return domain.ErrNotAParticipant
	}
	if s.IsRanked(memberID) {
		return domain.ErrMemberAlreadyRanked
	}
	if memberID == s.FacilitatorID {
		return domain.ErrNotFacilitator
	}
	if len(s.Participants) <= MinGroupSize {
		return domain.ErrInvalidGroupSize
	}
	s.Participants = removeID(s.Participants, memberID)
	s.Candidates = removeID(s.Candidates, memberID)
	delete(s.Votes, memberID)
	for voter, v := range s.Votes {
		if v.CandidateID == memberID {
			delete(s.Votes, voter)
		}
	}
	if len(s.Ranks) == 0 {
		s.CurrentLevel = len(s.Candidates)
	}
	s.Touch()
	return nil
}

func (s *Session) ChangeFacilitator(memberID string) error {
	if !s.IsParticipant(memberID) {
		return domain.ErrNotAParticipant
	}
	s.FacilitatorID = memberID
	s.Touch()
	return nil
}

func (s *Session) Pause() error {
	if s.Status != SessionActive {
		return domain.ErrSessionNotActive
	}
	s.Status = SessionPaused
	s.Touch()
	return nil
}

func (s *Session) Resume() error {
	if s.Status != SessionPaused {
		return domain.ErrNotPaused
	}
	s.Status = SessionActive
	s.Touch()
	return nil
}

func (s *Session) ResetVotes() {
	s.Votes = make(map[string]Vote)
	s.Touch()
}

// Restart rewinds to the opening state: original participants back in the
// pool, ranks and votes cleared, active again.
func (s *Session) Restart() {
	s.Candidates = append([]string(nil), s.Participants...)
	s.CurrentLevel = len(s.Participants)
	s.Ranks = s.Ranks[:0]
	s.Votes = make(map[string]Vote)
	s.Status = SessionActive
	s.Touch()
}

// Clone deep-copies the session so stores can hand out snapshots that stay
// detached until the next Save.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Participants = append([]string(nil), s.Participants...)
	cp.Candidates = append([]string(nil), s.Candidates...)
	cp.Ranks = append([]RankEntry(nil), s.Ranks...)
	cp.Votes = make(map[string]Vote, len(s.Votes))
	for k, v := range s.Votes {
		cp.Votes[k] = v
	}
	return &cp
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
