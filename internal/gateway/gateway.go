package gateway

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/hexwall/skirmish/internal/dependencies/clock"
	"github.com/hexwall/skirmish/internal/dependencies/random"
	"github.com/hexwall/skirmish/internal/model"
	"github.com/hexwall/skirmish/internal/services/auth"
	"github.com/hexwall/skirmish/internal/services/match"
	"github.com/hexwall/skirmish/internal/services/matchmaker"
)

const (
	// maxLineBytes bounds a single client line
	maxLineBytes = 4096
	// writeTimeout bounds a single write so a stuck client cannot stall the loop
	writeTimeout = 5 * time.Second
	// eventBuffer smooths bursts from readers and engine workers
	eventBuffer = 256
)

// Config holds gateway settings
type Config struct {
	// Addr is the TCP listen address
	Addr string
	// RelaxInterval is how often stalled slots widen their rank bands
	RelaxInterval time.Duration
}

// DefaultConfig returns default gateway configuration
func DefaultConfig() Config {
	return Config{
		Addr:          ":8080",
		RelaxInterval: 10 * time.Second,
	}
}

// session is one connection's state: its token, owner, and current
// placement. Owned exclusively by the gateway loop.
type session struct {
	conn        net.Conn
	remote      string
	token       model.Token
	username    model.Username
	placement   model.Placement
	connectedAt time.Time
}

// Gateway is the single authoritative owner of all client socket I/O and
// command dispatch. One goroutine accepts connections, one reader goroutine
// per connection feeds lines into the event channel, and a single loop
// goroutine consumes every event, so no session or matchmaking state needs
// a lock.
type Gateway struct {
	cfg      Config
	logger   *slog.Logger
	auth     *auth.Service
	mm       *matchmaker.Matchmaker
	pool     *match.Pool
	clk      clock.Clock
	rnd      random.Random
	matchCfg match.Config

	events   chan event
	listener net.Listener

	sessions map[net.Conn]*session
	byUser   map[model.Username]*session
}

// New creates a gateway
func New(
	cfg Config,
	authService *auth.Service,
	mm *matchmaker.Matchmaker,
	pool *match.Pool,
	matchCfg match.Config,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		cfg:      cfg,
		logger:   logger,
		auth:     authService,
		mm:       mm,
		pool:     pool,
		clk:      clk,
		rnd:      rnd,
		matchCfg: matchCfg,
		events:   make(chan event, eventBuffer),
		sessions: make(map[net.Conn]*session),
		byUser:   make(map[model.Username]*session),
	}
}

// Listen binds the TCP listener. Separate from Run so callers can learn the
// bound address before serving.
func (g *Gateway) Listen() error {
	ln, err := net.Listen("tcp", g.cfg.Addr)
	if err != nil {
		return err
	}
	g.listener = ln
	g.logger.Info("gateway listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound listen address. Only valid after Listen.
func (g *Gateway) Addr() string {
	if g.listener == nil {
		return g.cfg.Addr
	}
	return g.listener.Addr().String()
}

// Run serves the event loop until the context is cancelled. Listen must
// have been called first.
func (g *Gateway) Run(ctx context.Context) error {
	go g.acceptLoop()

	ticker := time.NewTicker(g.cfg.RelaxInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			g.shutdown()
			return nil
		case <-ticker.C:
			g.handleRelax()
		case ev := <-g.events:
			g.dispatch(ev)
		}
	}
}

// Status returns a snapshot of slots and queue, resolved on the loop
// goroutine so no state is read concurrently.
func (g *Gateway) Status(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	select {
	case g.events <- statusEvent{reply: reply}:
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
	select {
	case status := <-reply:
		return status, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

func (g *Gateway) dispatch(ev event) {
	switch e := ev.(type) {
	case connectEvent:
		g.handleConnect(e.conn)
	case lineEvent:
		g.handleLine(e.conn, e.text)
	case disconnectEvent:
		g.handleDisconnect(e.conn)
	case updateEvent:
		g.handleUpdate(e.update)
	case statusEvent:
		e.reply <- g.snapshot()
	}
}

func (g *Gateway) acceptLoop() {
	for {
		conn, err := g.listener.Accept()
		if err != nil {
			// Listener closed during shutdown
			return
		}
		g.events <- connectEvent{conn: conn}
	}
}

// readLoop scans lines off one connection. Read errors and EOF both end the
// scan and surface as an implicit disconnect.
func (g *Gateway) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 1024), maxLineBytes)
	for scanner.Scan() {
		g.events <- lineEvent{conn: conn, text: scanner.Text()}
	}
	g.events <- disconnectEvent{conn: conn}
}

// write sends one message, newline-terminated, with a bounded deadline
func (g *Gateway) write(sess *session, text string) {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_ = sess.conn.SetWriteDeadline(g.clk.Now().Add(writeTimeout))
	if _, err := sess.conn.Write([]byte(text)); err != nil {
		g.logger.Warn("write failed",
			slog.String("remote", sess.remote),
			slog.String("error", err.Error()),
		)
	}
}

// broadcastToSlot sends text to every connected member of a slot except one
func (g *Gateway) broadcastToSlot(id model.SlotID, text string, except model.Username) {
	slot := g.mm.Slot(id)
	if slot == nil {
		return
	}
	for _, member := range slot.Members {
		if member == except {
			continue
		}
		if sess, ok := g.byUser[member]; ok {
			g.write(sess, text)
		}
	}
}

// shutdown closes the listener and every live connection
func (g *Gateway) shutdown() {
	if g.listener != nil {
		_ = g.listener.Close()
	}
	for conn := range g.sessions {
		_ = conn.Close()
	}
	g.logger.Info("gateway stopped")
}

func (g *Gateway) snapshot() Status {
	slots := g.mm.Slots()
	status := Status{
		Slots: make([]SlotInfo, len(slots)),
		Queue: make([]string, 0, len(g.mm.Queue())),
	}
	for i, slot := range slots {
		status.Slots[i] = SlotInfo{
			ID:        int(slot.ID),
			Status:    string(slot.Status),
			Occupancy: slot.Occupancy,
			Capacity:  g.mm.PlayersPerGame(),
			Band:      slot.Band.String(),
		}
	}
	for _, username := range g.mm.Queue() {
		status.Queue = append(status.Queue, string(username))
	}
	return status
}
