package runner

import (
	"context"
	"time"

	"statecraft.ai/internal/sim/engine"
	"statecraft.ai/internal/sim/game"
)

// Brief is everything a character may know at the start of a round.
// Summary is nil on the first round; after that it is the resolution
// summary of the round just finished.
type Brief struct {
	Round     int
	Character string
	Context   string
	Topics    []string
	Summary   *game.Summary
	Deadline  time.Time
}

// Agent decides one character's submission for a round. Propose must
// honor ctx: when the round deadline passes the controller stops
// waiting and records a NoOp for the character.
type Agent interface {
	Name() string
	Propose(ctx context.Context, brief *Brief) (engine.Submission, error)
}
