package match

import (
	"log/slog"

	"github.com/hexwall/skirmish/internal/model"
)

// actionBuffer bounds how many unresolved actions an engine will hold.
// The gateway never blocks on a full engine; overflow is dropped with a log.
const actionBuffer = 128

// UpdateFunc receives each batch of outcomes an engine produces. It is
// called on the engine's worker goroutine and must not block indefinitely.
type UpdateFunc func(update model.Update)

// Engine runs one match on a pool worker. It owns its Game exclusively for
// the duration of the match and communicates only through channels and the
// update callback, never touching connections. Between iterations it blocks
// until a new action or a resume signal arrives; that receive is the sole
// intentional suspension point. Once started it always runs to the game's
// end threshold.
type Engine struct {
	slot     model.SlotID
	game     *Game
	onUpdate UpdateFunc
	logger   *slog.Logger

	actions chan model.Action
	resume  chan struct{}
}

// NewEngine creates an engine for one match
func NewEngine(slot model.SlotID, game *Game, onUpdate UpdateFunc, logger *slog.Logger) *Engine {
	return &Engine{
		slot:     slot,
		game:     game,
		onUpdate: onUpdate,
		logger:   logger.With(slog.Int("slot", int(slot))),
		actions:  make(chan model.Action, actionBuffer),
		resume:   make(chan struct{}, 1),
	}
}

// Slot returns the slot this engine is bound to
func (e *Engine) Slot() model.SlotID {
	return e.slot
}

// SubmitAction queues a player action. Actions from the gateway arrive in
// forwarding order; a single producer feeds each engine.
func (e *Engine) SubmitAction(username model.Username, text string) {
	select {
	case e.actions <- model.Action{Username: username, Text: text}:
	default:
		e.logger.Warn("action dropped, engine buffer full",
			slog.String("username", string(username)))
	}
}

// Resume wakes the engine if it is paused between iterations
func (e *Engine) Resume() {
	select {
	case e.resume <- struct{}{}:
	default:
	}
}

// Run executes the match to completion. It drains queued actions, resolves
// them, emits each outcome batch, and pauses until woken when nothing is
// pending. On reaching the end threshold it emits the final batch and returns.
func (e *Engine) Run() {
	e.logger.Info("match started", slog.Int("players", len(e.game.Players())))

	for {
		e.drain()
		e.game.Step()

		if e.game.Ended() {
			break
		}

		e.flush(false)

		// Paused: wait for the next action or a resume signal
		select {
		case action := <-e.actions:
			e.game.Submit(action)
		case <-e.resume:
		}
	}

	e.game.Finish()
	e.flush(true)

	e.logger.Info("match ended", slog.Int("match_score", e.game.MatchScore()))
}

// drain moves every queued action into the game without blocking
func (e *Engine) drain() {
	for {
		select {
		case action := <-e.actions:
			e.game.Submit(action)
		default:
			return
		}
	}
}

// flush emits the accumulated batch. Empty non-final batches are skipped.
func (e *Engine) flush(final bool) {
	messages := e.game.TakeMessages()
	if len(messages) == 0 && !final {
		return
	}
	e.onUpdate(model.Update{
		Slot:     e.slot,
		Messages: messages,
		Final:    final,
	})
}
