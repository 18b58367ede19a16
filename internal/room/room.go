package room

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mafia-night/backend/internal/bot"
	"github.com/mafia-night/backend/internal/engine"
	"github.com/mafia-night/backend/internal/protocol"
)

const minPlayersToStart = 4

// Join/reconnect failures reported back to the requesting connection. The
// text goes to the client verbatim, matching the messages players already
// know.
var (
	ErrGameStarted  = errors.New("Game already started")
	ErrNameTaken    = errors.New("That name is already taken")
	ErrNoSuchPlayer = errors.New("Unable to reconnect to game")
)

// Config carries the room's collaborators. Zero values are usable so tests
// can construct rooms with just the pieces they care about.
type Config struct {
	Log     *zap.Logger
	Rng     *rand.Rand
	Policy  bot.Policy
	OnEmpty func(code string)
}

// Room owns the authoritative game state for one code. All access runs
// through the inbox, one message to completion at a time, so handlers never
// interleave and no locking is needed.
type Room struct {
	inbox   chan Msg
	game    *engine.Game
	clients map[string]chan protocol.ServerMessage
	rng     *rand.Rand
	policy  bot.Policy
	log     *zap.Logger
	onEmpty func(code string)
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates the room with its creator installed as narrator, sends the
// creator their private info and the initial snapshot, and starts the loop.
func New(parent context.Context, code string, host Client, hostName string, cfg Config) *Room {
	ctx, cancel := context.WithCancel(parent)

	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Rng == nil {
		cfg.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Policy == nil {
		cfg.Policy = bot.NewRandomPolicy(cfg.Rng)
	}
	if cfg.OnEmpty == nil {
		cfg.OnEmpty = func(string) {}
	}

	narrator := &engine.Player{ID: host.ID, Name: hostName}
	r := &Room{
		inbox:   make(chan Msg, 64),
		game:    engine.NewGame(code, narrator),
		clients: map[string]chan protocol.ServerMessage{host.ID: host.Outbox},
		rng:     cfg.Rng,
		policy:  cfg.Policy,
		log:     cfg.Log.With(zap.String("game", code)),
		onEmpty: cfg.OnEmpty,
		ctx:     ctx,
		cancel:  cancel,
	}

	r.sendPlayerInfo(narrator)
	r.broadcastState()
	r.log.Info("room created", zap.String("narrator", hostName))

	go r.loop()
	return r
}

// Inbox exposes the message channel to the transport layer and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)
			case Start:
				r.handleStart(msg)
			case NightAction:
				r.handleNightAction(msg)
			case Vote:
				r.handleVote(msg)
			case NextPhase:
				r.handleNextPhase(msg)
			case Reconnect:
				r.handleReconnect(msg)
			case Disconnect:
				r.handleDisconnect(msg)
			case Leave:
				r.handleLeave(msg)
			case AddBots:
				r.handleAddBots(msg)
			case Restart:
				r.handleRestart(msg)
			case GetView:
				msg.Reply <- View{NumClients: len(r.clients), Game: r.game.Clone()}
			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) handleJoin(msg Join) {
	if r.game.Started {
		msg.Reply <- ErrGameStarted
		return
	}
	if r.game.PlayerByName(msg.PlayerName) != nil {
		msg.Reply <- ErrNameTaken
		return
	}

	p := &engine.Player{ID: msg.Client.ID, Name: msg.PlayerName, Alive: true}
	r.game.Players = append(r.game.Players, p)
	r.clients[msg.Client.ID] = msg.Client.Outbox
	msg.Reply <- nil

	r.sendPlayerInfo(p)
	r.broadcastState()
}

func (r *Room) handleStart(msg Start) {
	if !r.isNarrator(msg.ClientID) || r.game.Started {
		return
	}
	if len(r.game.Players) < minPlayersToStart {
		return
	}
	if err := engine.AssignRoles(r.game, r.rng); err != nil {
		return
	}

	r.game.Started = true
	r.game.Phase = engine.PhaseNight
	r.game.Message = ""

	for _, p := range r.game.Players {
		r.sendPlayerInfo(p)
	}
	// A night whose mafia and doctor are all bots resolves with no inbound
	// action, so it runs on entry too.
	r.runNight()
	r.broadcastState()
	r.log.Info("game started", zap.Int("players", len(r.game.Players)))
}

func (r *Room) handleNightAction(msg NightAction) {
	if engine.RecordNightAction(r.game, msg.ClientID, msg.TargetID, msg.Kind) {
		r.runNight()
	}
	// Unchanged state is still rebroadcast so clients converge.
	r.broadcastState()
}

// runNight records outstanding bot actions, refreshes the narrator's status
// line, and resolves the night once every required actor has acted.
func (r *Room) runNight() {
	r.autoplayNight()
	r.game.Message = engine.NightStatus(r.game)

	if !engine.NightReady(r.game) {
		return
	}

	victim := engine.ResolveNight(r.game)
	if victim != nil {
		r.sendPlayerInfo(victim)
	}

	if engine.CheckGameEnd(r.game) {
		r.log.Info("game over", zap.String("result", r.game.PublicMessage))
		return
	}

	clear(r.game.Actions)
	r.game.Phase = engine.PhaseDay
}

// autoplayNight submits an action for every living bot with a night role
// that hasn't acted yet.
func (r *Room) autoplayNight() {
	for _, p := range r.game.Players {
		if !p.Bot || !p.Alive {
			continue
		}
		if p.Role != engine.RoleMafia && p.Role != engine.RoleDoctor {
			continue
		}
		if _, acted := r.game.Actions[p.ID]; acted {
			continue
		}
		if target, ok := r.policy.ChooseNightTarget(r.game, p); ok {
			engine.RecordNightAction(r.game, p.ID, target.ID, engine.ActionKind(p.Role))
		}
	}
}

func (r *Room) handleVote(msg Vote) {
	if engine.RecordVote(r.game, msg.ClientID, msg.TargetID) {
		r.autoplayVotes()
	}
	r.broadcastState()
}

func (r *Room) autoplayVotes() {
	for _, p := range r.game.Players {
		if !p.Bot || !p.Alive || p.Role == engine.RoleNarrator {
			continue
		}
		if _, voted := r.game.Votes[p.ID]; voted {
			continue
		}
		if target, ok := r.policy.ChooseVoteTarget(r.game, p); ok {
			engine.RecordVote(r.game, p.ID, target.ID)
		}
	}
}

func (r *Room) handleNextPhase(msg NextPhase) {
	if !r.isNarrator(msg.ClientID) || !r.game.Started || r.game.Over {
		return
	}

	if r.game.Phase == engine.PhaseDay {
		// Bots that sat out the day still vote before the tally.
		r.autoplayVotes()
		if eliminated := engine.ResolveVotes(r.game, r.rng); eliminated != nil {
			r.sendPlayerInfo(eliminated)
			if engine.CheckGameEnd(r.game) {
				r.broadcastState()
				r.log.Info("game over", zap.String("result", r.game.PublicMessage))
				return
			}
		}
		r.game.Phase = engine.PhaseNight
	} else {
		r.game.Phase = engine.PhaseDay
	}

	clear(r.game.Votes)
	clear(r.game.Actions)
	for _, p := range r.game.Players {
		p.Votes = 0
	}

	if r.game.Phase == engine.PhaseNight {
		r.runNight()
	}
	r.broadcastState()
}

func (r *Room) handleReconnect(msg Reconnect) {
	p := r.game.PlayerByID(msg.PlayerID)
	if p == nil {
		p = r.game.PlayerByName(msg.PlayerName)
	}
	if p == nil || p.Bot {
		msg.Reply <- ErrNoSuchPlayer
		return
	}

	// Rebind the record, and any pending vote or action, to the new
	// connection.
	if p.ID != msg.Client.ID {
		r.dropClient(p.ID)
		r.game.RebindID(p.ID, msg.Client.ID)
	}
	p.Disconnected = false
	r.clients[p.ID] = msg.Client.Outbox
	msg.Reply <- nil

	r.sendPlayerInfo(p)
	r.send(p.ID, protocol.ServerMessage{Type: protocol.EvtGameState, State: engine.SnapshotFor(r.game, p.ID)})

	notice := protocol.ServerMessage{Type: protocol.EvtPlayerReconnected, PlayerName: p.Name}
	for id := range r.clients {
		if id != p.ID {
			r.send(id, notice)
		}
	}
	r.broadcastState()
	r.log.Info("player reconnected", zap.String("player", p.Name))
}

func (r *Room) handleDisconnect(msg Disconnect) {
	p := r.game.PlayerByID(msg.ClientID)
	if p == nil {
		return
	}
	p.Disconnected = true
	r.dropClient(msg.ClientID)
	r.broadcastState()
}

// dropClient closes and unregisters an outbox. The room is the only closer
// of client channels, so a channel is never closed twice.
func (r *Room) dropClient(id string) {
	if ch, ok := r.clients[id]; ok {
		close(ch)
		delete(r.clients, id)
	}
}

func (r *Room) handleLeave(msg Leave) {
	idx := -1
	for i, p := range r.game.Players {
		if p.ID == msg.ClientID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	p := r.game.Players[idx]
	r.game.Players = append(r.game.Players[:idx], r.game.Players[idx+1:]...)
	// Unregister without closing: the connection outlives the membership
	// and may join another room.
	delete(r.clients, msg.ClientID)

	// Retract anything the leaver had pending so tallies stay consistent.
	if targetID, ok := r.game.Votes[p.ID]; ok {
		if target := r.game.PlayerByID(targetID); target != nil {
			target.Votes--
		}
		delete(r.game.Votes, p.ID)
	}
	delete(r.game.Actions, p.ID)

	if len(r.game.Players) == 0 {
		r.log.Info("room empty, destroying")
		r.onEmpty(r.game.Code)
		r.shutdown()
		return
	}

	if p.Role == engine.RoleNarrator && !r.game.Started {
		next := r.game.Players[0]
		next.Role = engine.RoleNarrator
		r.sendPlayerInfo(next)
	}

	r.broadcastState()
}

func (r *Room) handleAddBots(msg AddBots) {
	if r.game.PlayerByID(msg.ClientID) == nil || r.game.Started {
		return
	}
	for i := 0; i < msg.Count; i++ {
		// A leave can free up a low number, so the name is checked the same
		// way join checks names.
		name := ""
		for n := len(r.game.Players); ; n++ {
			name = fmt.Sprintf("Bot %d", n)
			if r.game.PlayerByName(name) == nil {
				break
			}
		}
		b := &engine.Player{
			ID:    "bot-" + uuid.NewString(),
			Name:  name,
			Alive: true,
			Bot:   true,
		}
		r.game.Players = append(r.game.Players, b)
	}
	r.broadcastState()
}

func (r *Room) handleRestart(msg Restart) {
	if !r.isNarrator(msg.ClientID) || !r.game.Started {
		return
	}

	for _, p := range r.game.Players {
		if p.Role != engine.RoleNarrator {
			p.Role = engine.RoleUnassigned
		}
	}
	if err := engine.AssignRoles(r.game, r.rng); err != nil {
		return
	}

	clear(r.game.Actions)
	clear(r.game.Votes)
	r.game.Over = false
	r.game.Started = true
	r.game.Phase = engine.PhaseNight
	r.game.Message = ""
	r.game.PublicMessage = ""

	for _, p := range r.game.Players {
		r.sendPlayerInfo(p)
	}
	r.runNight()
	r.broadcastState()
	r.log.Info("game restarted")
}

func (r *Room) isNarrator(clientID string) bool {
	p := r.game.PlayerByID(clientID)
	return p != nil && p.Role == engine.RoleNarrator
}

// sendPlayerInfo unicasts a player their own record. A copy goes on the
// wire; the writer goroutine marshals it while the room keeps mutating the
// original.
func (r *Room) sendPlayerInfo(p *engine.Player) {
	cp := *p
	r.send(p.ID, protocol.ServerMessage{Type: protocol.EvtPlayerInfo, Player: &cp})
}

// broadcastState fans the state out to every connection, redacted per
// viewer. Roles the viewer may not see are stripped before the payload
// leaves the room.
func (r *Room) broadcastState() {
	for id := range r.clients {
		r.send(id, protocol.ServerMessage{Type: protocol.EvtGameState, State: engine.SnapshotFor(r.game, id)})
	}
}

func (r *Room) send(clientID string, msg protocol.ServerMessage) {
	ch, ok := r.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		// Client is slow/full - drop them. The record survives for reconnect.
		close(ch)
		delete(r.clients, clientID)
		if p := r.game.PlayerByID(clientID); p != nil {
			p.Disconnected = true
		}
	}
}
