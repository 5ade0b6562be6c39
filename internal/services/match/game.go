package match

import (
	"fmt"

	"github.com/hexwall/skirmish/internal/dependencies/random"
	"github.com/hexwall/skirmish/internal/model"
)

// Config holds per-match settings
type Config struct {
	// PlayersPerGame is the fixed roster size. Must be even: the first half
	// of the roster by join order counts positive toward the match score,
	// the second half negative.
	PlayersPerGame int
	// EndThreshold is the number of resolved actions after which the match ends
	EndThreshold int
}

// DefaultConfig returns default match configuration
func DefaultConfig() Config {
	return Config{
		PlayersPerGame: 2,
		EndThreshold:   4,
	}
}

// Welcome is the text sent to every player when a match starts
func Welcome(cfg Config) string {
	return fmt.Sprintf(
		"Welcome to our game!\n"+
			"To play this game, you only need to write some messages in your keyboard "+
			"and check what the other players have done in the meantime!\n"+
			"The game ends after %d interactions with players.",
		cfg.EndThreshold+1,
	)
}

// GameOverPrefix starts every final per-player message
const GameOverPrefix = "Game over: "

// outcome is one entry in the cumulative-probability table. A single
// uniform draw resolves against the thresholds in order; the first entry
// whose threshold exceeds the draw wins.
type outcome struct {
	firstPerson string
	thirdPerson string
	delta       int
	threshold   float64
}

var outcomes = []outcome{
	{"Planted the bomb", "planted the bomb", 3, 0.10},
	{"Killed a player", "killed a player", 2, 0.30},
	{"Assisted on a kill", "assisted on a kill", 1, 0.50},
	{"You died", "died", 0, 0.75},
	{"Walked", "walked", 0, 1.0},
}

// Game owns one match's state: the pending action queue, per-player and
// aggregate scores, and the iteration counter. A fresh Game is built per
// match via NewGame and discarded when it ends.
type Game struct {
	cfg Config
	rnd random.Random

	players []model.Username
	scores  []int

	pending    []model.Action
	matchScore int
	iterations int

	out []model.PlayerMessage
}

// NewGame creates a game for the given roster, in join order
func NewGame(cfg Config, rnd random.Random, players []model.Username) *Game {
	roster := make([]model.Username, len(players))
	copy(roster, players)
	return &Game{
		cfg:     cfg,
		rnd:     rnd,
		players: roster,
		scores:  make([]int, len(roster)),
	}
}

// Players returns the roster in join order
func (g *Game) Players() []model.Username {
	return g.players
}

// Submit queues an action for the next step
func (g *Game) Submit(action model.Action) {
	g.pending = append(g.pending, action)
}

// Pending reports whether any actions await resolution
func (g *Game) Pending() bool {
	return len(g.pending) > 0
}

// Iterations returns the number of actions resolved so far
func (g *Game) Iterations() int {
	return g.iterations
}

// Ended reports whether the match has hit its end threshold
func (g *Game) Ended() bool {
	return g.iterations >= g.cfg.EndThreshold
}

// Step resolves all pending actions in FIFO order, accumulating narrative
// messages for later collection via TakeMessages.
func (g *Game) Step() {
	for len(g.pending) > 0 {
		action := g.pending[0]
		g.pending = g.pending[1:]
		g.iterations++
		g.resolve(action.Username)
	}
}

// resolve draws one outcome for the actor and emits a first-person message
// to them and a third-person message to everyone else
func (g *Game) resolve(actor model.Username) {
	idx := g.playerIndex(actor)
	if idx < 0 {
		return
	}

	draw := g.rnd.Float64()
	var o outcome
	for _, candidate := range outcomes {
		if draw < candidate.threshold {
			o = candidate
			break
		}
	}

	g.scores[idx] += o.delta
	if idx < len(g.players)/2 {
		g.matchScore += o.delta
	} else {
		g.matchScore -= o.delta
	}

	for i, player := range g.players {
		if i == idx {
			g.out = append(g.out, model.PlayerMessage{Username: player, Text: o.firstPerson})
		} else {
			g.out = append(g.out, model.PlayerMessage{
				Username: player,
				Text:     fmt.Sprintf("%s %s", actor, o.thirdPerson),
			})
		}
	}
}

// Finish applies the end-of-match sign correction and emits the final
// per-player score messages. The rule: a first-half player's score is
// negated when the aggregate is negative, a second-half player's when it
// is positive. Scores already negative on the losing side are not
// re-flipped.
func (g *Game) Finish() {
	half := len(g.players) / 2
	for i := range g.scores {
		if g.matchScore < 0 && i < half {
			g.scores[i] = -g.scores[i]
		}
		if g.matchScore > 0 && i >= half {
			g.scores[i] = -g.scores[i]
		}
	}

	for i, player := range g.players {
		g.out = append(g.out, model.PlayerMessage{
			Username: player,
			Text:     fmt.Sprintf("%sYou scored %d points!", GameOverPrefix, g.scores[i]),
			Score:    g.scores[i],
			Final:    true,
		})
	}
}

// TakeMessages drains and returns the accumulated message batch
func (g *Game) TakeMessages() []model.PlayerMessage {
	out := g.out
	g.out = nil
	return out
}

// Scores returns the per-player scores in roster order
func (g *Game) Scores() []int {
	scores := make([]int, len(g.scores))
	copy(scores, g.scores)
	return scores
}

// MatchScore returns the signed aggregate score
func (g *Game) MatchScore() int {
	return g.matchScore
}

func (g *Game) playerIndex(username model.Username) int {
	for i, player := range g.players {
		if player == username {
			return i
		}
	}
	return -1
}
