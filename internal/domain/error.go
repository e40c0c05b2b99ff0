package domain

import "errors"

var (
	// Validation errors: rejected synchronously, no state change.
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidGroupSize     = errors.New("group size must be between 2 and 6")
	ErrDuplicateParticipant = errors.New("participant already in an active session")
	ErrNotAParticipant      = errors.New("member is not a participant of this session")
	ErrInvalidCandidate     = errors.New("invalid candidate for the current level")
	ErrUnknownOverride      = errors.New("unknown override operation")

	// State-conflict errors.
	ErrSessionNotActive    = errors.New("session is not active")
	ErrNotPaused           = errors.New("session is not paused")
	ErrSessionCompleted    = errors.New("session already completed")
	ErrGroupFull           = errors.New("session already has the maximum number of members")
	ErrMemberAlreadyRanked = errors.New("member has already been assigned a rank")
	ErrRanksAssigned       = errors.New("ranks have already been assigned this session")
	ErrNoVotes             = errors.New("no votes cast for the current level")
	ErrNoCandidates        = errors.New("no candidates remain at the current level")

	// Not-found: distinct so callers can tell "never existed" from "finished".
	ErrSessionNotFound = errors.New("session not found")
	ErrNotFound        = errors.New("entity not found")

	// Authorization: the front end checks first, the core re-validates.
	ErrNotFacilitator = errors.New("requester is not the session facilitator")

	// Infra
	ErrInvalidExecContext = errors.New("invalid execution context for query")
	ErrSessionBusy        = errors.New("session is locked by another operation")
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
