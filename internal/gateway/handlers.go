package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/hexwall/skirmish/internal/model"
	"github.com/hexwall/skirmish/internal/services/match"
	"github.com/hexwall/skirmish/internal/services/matchmaker"
)

func (g *Gateway) handleConnect(conn net.Conn) {
	sess := &session{
		conn:        conn,
		remote:      conn.RemoteAddr().String(),
		placement:   model.NoPlacement(),
		connectedAt: g.clk.Now(),
	}
	g.sessions[conn] = sess
	g.logger.Info("client connected", slog.String("remote", sess.remote))

	g.write(sess, welcomeBanner)
	go g.readLoop(conn)
}

func (g *Gateway) handleLine(conn net.Conn, text string) {
	sess, ok := g.sessions[conn]
	if !ok {
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	// In-match text that is not a logout command is a game action
	if sess.placement.Kind == model.PlacementPlaying && !strings.HasPrefix(text, "logout") {
		if slot := g.mm.Slot(sess.placement.Slot); slot != nil && slot.Engine != nil {
			slot.Engine.SubmitAction(sess.username, text)
			slot.Engine.Resume()
		}
		return
	}

	fields := strings.Fields(text)
	switch fields[0] {
	case "help":
		g.write(sess, helpText)
	case "register":
		g.handleRegister(sess, fields)
	case "login":
		g.handleLogin(sess, fields)
	case "logout":
		g.handleLogout(sess, fields)
	default:
		// Echo back anything unrecognized outside a match
		g.write(sess, text)
	}
}

func (g *Gateway) handleRegister(sess *session, fields []string) {
	if len(fields) != 3 {
		g.write(sess, usageRegister)
		return
	}
	if sess.token != "" {
		g.write(sess, errAlreadyLoggedIn)
		return
	}

	username := model.Username(fields[1])
	token, err := g.auth.Register(context.Background(), username, fields[2])
	if err != nil {
		g.write(sess, wireError(err))
		return
	}

	g.attach(sess, username, token)
}

func (g *Gateway) handleLogin(sess *session, fields []string) {
	if len(fields) != 3 {
		g.write(sess, usageLogin)
		return
	}
	if sess.token != "" {
		g.write(sess, errAlreadyLoggedIn)
		return
	}

	username := model.Username(fields[1])
	token, err := g.auth.Login(context.Background(), username, fields[2])
	if err != nil {
		g.write(sess, wireError(err))
		return
	}

	g.attach(sess, username, token)
}

// attach binds an authenticated user to the session, runs the join
// protocol, and reports the token plus placement status in one response
func (g *Gateway) attach(sess *session, username model.Username, token model.Token) {
	sess.username = username
	sess.token = token
	g.byUser[username] = sess

	status := g.place(sess)
	g.write(sess, fmt.Sprintf("Login Token: %s\nWelcome %s!\n%s", token, username, status))
}

// place runs the join protocol for a session and returns the status text
// for the joining user. Side effects (peer broadcasts, placement updates,
// match starts) happen here.
func (g *Gateway) place(sess *session) string {
	rank, err := g.auth.Rank(context.Background(), sess.username)
	if err != nil {
		rank = model.DefaultRank
	}

	result := g.mm.Join(sess.username, rank)
	switch result.Kind {
	case matchmaker.JoinRejoined:
		sess.placement = model.PlayingIn(result.Slot)
		g.broadcastToSlot(result.Slot, fmt.Sprintf("%s has reconnected!", sess.username), sess.username)
		return fmt.Sprintf("Connected to Server #%d", result.Slot)

	case matchmaker.JoinQueued:
		sess.placement = model.QueuedAt(result.Position)
		return fmt.Sprintf("You are in the Queue!\nPosition in Queue: %d", result.Position)

	case matchmaker.JoinWaiting:
		sess.placement = model.WaitingIn(result.Slot)
		text := g.waitingText(result.Slot, result.Occupancy)
		g.broadcastToSlot(result.Slot, text, sess.username)
		return text

	case matchmaker.JoinStarting:
		g.startMatch(result.Slot, sess.username)
		return startingText(g.matchCfg)
	}
	return ""
}

func (g *Gateway) waitingText(slot model.SlotID, occupancy int) string {
	return fmt.Sprintf("Waiting for players [%d/%d] Server #%d", occupancy, g.mm.PlayersPerGame(), slot)
}

func startingText(cfg match.Config) string {
	return "Game Starting!\n" + match.Welcome(cfg)
}

// startMatch promotes every member of a full slot to playing, announces the
// start to everyone but the completing user (whose response already carries
// it), and launches a fresh engine on the worker pool.
func (g *Gateway) startMatch(id model.SlotID, completer model.Username) {
	slot := g.mm.Slot(id)
	if slot == nil {
		return
	}

	game := match.NewGame(g.matchCfg, g.rnd, slot.Members)
	engine := match.NewEngine(id, game, g.postUpdate, g.logger)
	g.mm.BindEngine(id, engine)

	text := startingText(g.matchCfg)
	for _, member := range slot.Members {
		memberSess, ok := g.byUser[member]
		if !ok {
			continue
		}
		memberSess.placement = model.PlayingIn(id)
		if member != completer {
			g.write(memberSess, text)
		}
	}

	g.pool.Start(engine)
}

// postUpdate is the engine update callback. It runs on a worker goroutine
// and only forwards the batch into the event loop.
func (g *Gateway) postUpdate(update model.Update) {
	g.events <- updateEvent{update: update}
}

// handleUpdate delivers one engine batch, resolving usernames to their
// connections filtered by slot. The final batch carries the disconnect
// sentinel, applies rank deltas, and releases the slot.
func (g *Gateway) handleUpdate(update model.Update) {
	for _, msg := range update.Messages {
		sess, connected := g.byUser[msg.Username]
		inSlot := connected &&
			sess.placement.Kind == model.PlacementPlaying &&
			sess.placement.Slot == update.Slot

		if inSlot {
			text := msg.Text
			if msg.Final {
				text += "\n" + disconnectSentinel
			}
			g.write(sess, text)
		}

		if msg.Final {
			// Rank is adjusted for every player, connected or not
			if err := g.auth.AdjustRank(context.Background(), msg.Username, msg.Score); err != nil {
				g.logger.Error("rank update failed",
					slog.String("username", string(msg.Username)),
					slog.String("error", err.Error()),
				)
			}
			if inSlot {
				sess.placement = model.NoPlacement()
			}
		}
	}

	if update.Final {
		g.mm.Release(update.Slot)
		g.reofferQueue(false)
	}
}

func (g *Gateway) handleLogout(sess *session, fields []string) {
	if len(fields) != 2 {
		g.write(sess, usageLogout)
		return
	}

	token := model.Token(fields[1])
	username, ok := g.auth.UsernameForToken(token)
	if !ok {
		g.write(sess, invalidToken)
		return
	}

	target := g.byUser[username]
	if target == nil {
		// Token without a live connection; just invalidate it
		_ = g.auth.Logout(token)
		g.write(sess, logoutSuccess)
		return
	}

	g.write(sess, logoutSuccess)
	g.teardown(target, token)
}

// handleDisconnect is the implicit-logout path: same cleanup as an explicit
// logout, token resolved from the session, nothing written to the dead
// connection.
func (g *Gateway) handleDisconnect(conn net.Conn) {
	sess, ok := g.sessions[conn]
	if !ok {
		return
	}
	if sess.token == "" {
		delete(g.sessions, conn)
		_ = conn.Close()
		g.logger.Info("client disconnected", slog.String("remote", sess.remote))
		return
	}
	g.teardown(sess, sess.token)
}

// teardown unwinds a session's placement, invalidates its token, and closes
// the connection. A mid-fill slot gives the seat back; a running match gets
// a reconnect record instead.
func (g *Gateway) teardown(sess *session, token model.Token) {
	switch sess.placement.Kind {
	case model.PlacementWaiting:
		slotID := sess.placement.Slot
		occupancy := g.mm.Abandon(sess.username, slotID)
		if occupancy > 0 {
			g.broadcastToSlot(slotID, g.waitingText(slotID, occupancy), sess.username)
		}

	case model.PlacementPlaying:
		slotID := sess.placement.Slot
		if slot := g.mm.Slot(slotID); slot != nil && slot.Status == model.SlotRunning {
			g.mm.MarkLeft(sess.username, slotID)
			g.broadcastToSlot(slotID, fmt.Sprintf("%s has disconnected!", sess.username), sess.username)
		} else {
			g.mm.Abandon(sess.username, slotID)
		}

	case model.PlacementQueued:
		if g.mm.RemoveFromQueue(sess.username) {
			g.renumberQueue()
		}
	}

	_ = g.auth.Logout(token)
	delete(g.byUser, sess.username)
	delete(g.sessions, sess.conn)
	_ = sess.conn.Close()

	g.logger.Info("client logged out",
		slog.String("remote", sess.remote),
		slog.String("username", string(sess.username)),
		slog.Duration("connected", g.clk.Now().Sub(sess.connectedAt)),
	)
}

// handleRelax widens stalled rank bands, then re-offers the queue; users
// who still match nothing are told the bands are relaxing.
func (g *Gateway) handleRelax() {
	g.mm.Relax()
	g.reofferQueue(true)
}

// reofferQueue pops queued users in FIFO order back through the join
// protocol. Users placed into slots leave the queue; the rest keep their
// order and, after a relaxation pass, get notified.
func (g *Gateway) reofferQueue(notifyStillQueued bool) {
	placed := false
	for _, username := range g.mm.Queue() {
		sess, ok := g.byUser[username]
		if !ok {
			// Session vanished without cleanup; drop the entry
			g.mm.RemoveFromQueue(username)
			continue
		}

		rank, err := g.auth.Rank(context.Background(), username)
		if err != nil {
			rank = model.DefaultRank
		}

		result := g.mm.Join(username, rank)
		switch result.Kind {
		case matchmaker.JoinQueued:
			if notifyStillQueued {
				g.write(sess, stillInQueue)
			}

		case matchmaker.JoinWaiting:
			placed = true
			sess.placement = model.WaitingIn(result.Slot)
			text := g.waitingText(result.Slot, result.Occupancy)
			g.broadcastToSlot(result.Slot, text, sess.username)
			g.write(sess, text)

		case matchmaker.JoinStarting:
			placed = true
			// Empty completer: the popped user gets the start message
			// along with everyone else
			g.startMatch(result.Slot, "")
		}
	}

	if placed {
		g.renumberQueue()
	}
}

// renumberQueue refreshes queue positions after membership changes
func (g *Gateway) renumberQueue() {
	for i, username := range g.mm.Queue() {
		if sess, ok := g.byUser[username]; ok {
			sess.placement = model.QueuedAt(i + 1)
			g.write(sess, fmt.Sprintf("Position in Queue: %d", i+1))
		}
	}
}

// wireError maps service errors to their protocol strings
func wireError(err error) string {
	switch {
	case errors.Is(err, model.ErrUsernameExists):
		return errUsernameExists
	case errors.Is(err, model.ErrUserNotFound):
		return errUserNotFound
	case errors.Is(err, model.ErrIncorrectPassword):
		return errWrongPassword
	case errors.Is(err, model.ErrAlreadyLoggedIn):
		return errAlreadyLoggedIn
	default:
		return "Error: " + err.Error()
	}
}
