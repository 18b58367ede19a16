package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mafia-night/backend/internal/hub"
	"github.com/mafia-night/backend/internal/protocol"
	"github.com/mafia-night/backend/internal/room"
)

const writeTimeout = 3 * time.Second

// Handler upgrades the connection and runs one session until the client
// goes away. Each session holds at most one room membership at a time.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		s := &session{
			conn:   conn,
			connID: uuid.NewString(),
			out:    make(chan protocol.ServerMessage, 16),
			hub:    h,
			log:    log,
		}
		s.log.Info("client connected", zap.String("conn", s.connID))
		s.run(r.Context())
		s.log.Info("client disconnected", zap.String("conn", s.connID))
	}
}

type session struct {
	conn   *websocket.Conn
	connID string
	out    chan protocol.ServerMessage
	hub    *hub.Hub
	bound  *room.Room // room this connection is a member of, if any
	log    *zap.Logger
}

func (s *session) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Writer goroutine: drains room notifications onto the socket. A closed
	// outbox means the room dropped this connection, so the whole session
	// ends; the outbox is never reused.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-s.out:
				if !ok {
					cancel()
					return
				}
				payload, err := json.Marshal(msg)
				if err != nil {
					continue
				}
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				_ = s.conn.Write(wctx, websocket.MessageText, payload)
				wcancel()
			}
		}
	}()

	// The room keeps the participant record; the reader exiting only flips
	// the connected flag.
	defer func() {
		if s.bound != nil {
			s.bound.Inbox() <- room.Disconnect{ClientID: s.connID}
		}
	}()

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			return
		}

		var m protocol.ClientMessage
		if err := json.Unmarshal(data, &m); err != nil {
			s.writeError(ctx, "bad json")
			continue
		}

		s.dispatch(ctx, m)
	}
}

func (s *session) dispatch(ctx context.Context, m protocol.ClientMessage) {
	switch m.Type {
	case protocol.MsgCreateGame:
		if s.bound != nil {
			s.writeError(ctx, "Already in a game")
			return
		}
		reply := make(chan *room.Room, 1)
		s.hub.Inbox() <- hub.CreateRoom{Host: s.client(), PlayerName: m.PlayerName, Reply: reply}
		s.bound = <-reply

	case protocol.MsgJoinGame:
		if s.bound != nil {
			s.writeError(ctx, "Already in a game")
			return
		}
		rm := s.getRoom(m.GameCode)
		if rm == nil {
			s.writeError(ctx, "Game not found")
			return
		}
		reply := make(chan error, 1)
		rm.Inbox() <- room.Join{Client: s.client(), PlayerName: m.PlayerName, Reply: reply}
		if err := <-reply; err != nil {
			s.writeError(ctx, err.Error())
			return
		}
		s.bound = rm

	case protocol.MsgReconnect:
		if s.bound != nil {
			s.writeError(ctx, "Already in a game")
			return
		}
		rm := s.getRoom(m.GameCode)
		if rm == nil {
			s.writeError(ctx, "Unable to reconnect to game")
			return
		}
		reply := make(chan error, 1)
		rm.Inbox() <- room.Reconnect{Client: s.client(), PlayerID: m.PlayerID, PlayerName: m.PlayerName, Reply: reply}
		if err := <-reply; err != nil {
			s.writeError(ctx, err.Error())
			return
		}
		s.bound = rm

	case protocol.MsgStartGame:
		if rm := s.getRoom(m.GameCode); rm != nil {
			rm.Inbox() <- room.Start{ClientID: s.connID}
		}

	case protocol.MsgGameAction:
		if rm := s.getRoom(m.GameCode); rm != nil {
			rm.Inbox() <- room.NightAction{ClientID: s.connID, TargetID: m.TargetID, Kind: m.Action}
		}

	case protocol.MsgVote:
		if rm := s.getRoom(m.GameCode); rm != nil {
			rm.Inbox() <- room.Vote{ClientID: s.connID, TargetID: m.TargetID}
		}

	case protocol.MsgNextPhase:
		if rm := s.getRoom(m.GameCode); rm != nil {
			rm.Inbox() <- room.NextPhase{ClientID: s.connID}
		}

	case protocol.MsgRestartGame:
		if rm := s.getRoom(m.GameCode); rm != nil {
			rm.Inbox() <- room.Restart{ClientID: s.connID}
		}

	case protocol.MsgAddTestPlayers:
		if rm := s.getRoom(m.GameCode); rm != nil {
			rm.Inbox() <- room.AddBots{ClientID: s.connID, Count: m.NumPlayers}
		}

	case protocol.MsgLeaveGame:
		if rm := s.getRoom(m.GameCode); rm != nil {
			rm.Inbox() <- room.Leave{ClientID: s.connID}
			if s.bound == rm {
				s.bound = nil
			}
		}

	default:
		// Unknown intents are dropped without a diagnostic, same as any
		// other precondition failure.
	}
}

func (s *session) client() room.Client {
	return room.Client{ID: s.connID, Outbox: s.out}
}

func (s *session) getRoom(code string) *room.Room {
	reply := make(chan *room.Room, 1)
	s.hub.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
	return <-reply
}

// writeError bypasses the outbox; the websocket is safe for concurrent
// writers.
func (s *session) writeError(ctx context.Context, reason string) {
	payload, err := json.Marshal(protocol.ServerMessage{Type: protocol.EvtError, Error: reason})
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = s.conn.Write(wctx, websocket.MessageText, payload)
}
