package draft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session ID resolves to nothing.
var ErrSessionNotFound = errors.New("draft session not found")

// ErrTeamNotFound is returned when a team ID does not belong to the session.
var ErrTeamNotFound = errors.New("team not found in draft session")

// ConfigurationError carries every creation-time violation at once so the
// caller can re-prompt for all of them instead of fixing one at a time.
type ConfigurationError struct {
	Violations []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("draft configuration invalid: %s", strings.Join(e.Violations, "; "))
}

// NotReadyError reports every unmet start precondition together.
type NotReadyError struct {
	Violations []string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("draft not ready to start: %s", strings.Join(e.Violations, "; "))
}

// WrongTurnError names the team actually on the clock so the caller can
// retry with the right one.
type WrongTurnError struct {
	ExpectedTeamIndex int
	ExpectedTeamName  string
	GotTeamIndex      int
	GotTeamName       string
}

func (e *WrongTurnError) Error() string {
	return fmt.Sprintf("it's not %s's turn to pick, %s (team index %d) is on the clock",
		e.GotTeamName, e.ExpectedTeamName, e.ExpectedTeamIndex)
}

// DuplicatePickError means the target slot was already filled. Recording the
// same logical pick twice is rejected, never silently ignored.
type DuplicatePickError struct {
	OverallPick int
	TeamName    string
}

func (e *DuplicatePickError) Error() string {
	return fmt.Sprintf("pick %d for %s has already been made", e.OverallPick, e.TeamName)
}

// DuplicatePlayerError means the player is already on some team's roster in
// this session. Distinct from DuplicatePickError: the slot may be fine, the
// player is not.
type DuplicatePlayerError struct {
	PlayerID    uuid.UUID
	PlayerName  string
	DraftedBy   string
	DraftedInRd int
}

func (e *DuplicatePlayerError) Error() string {
	return fmt.Sprintf("player %s was already drafted by %s in round %d",
		e.PlayerName, e.DraftedBy, e.DraftedInRd)
}

// CorruptLedgerError signals a structural invariant break in the pick ledger:
// a bootstrapping or concurrency-control bug, never a user mistake. It is
// surfaced loudly and never auto-repaired.
type CorruptLedgerError struct {
	SessionID   uuid.UUID
	OverallPick int
	Detail      string
}

func (e *CorruptLedgerError) Error() string {
	return fmt.Sprintf("draft ledger corrupt for session %s at pick %d: %s",
		e.SessionID, e.OverallPick, e.Detail)
}
