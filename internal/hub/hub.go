package hub

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/mafia-night/backend/internal/bot"
	"github.com/mafia-night/backend/internal/room"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

type HubMsg interface{ isHubMsg() }

// CreateRoom allocates a fresh collision-checked code and spins up a room
// with the requesting connection as narrator.
type CreateRoom struct {
	Host       room.Client
	PlayerName string
	Reply      chan *room.Room
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Hub owns the room registry. Like the rooms themselves it is an actor: the
// map is touched only from the loop goroutine.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	rng    *rand.Rand
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				code := h.freshCode()
				// Each room actor gets its own rand source; sharing the
				// hub's would race across goroutines.
				rng := rand.New(rand.NewSource(h.rng.Int63()))
				rm := room.New(h.ctx, code, msg.Host, msg.PlayerName, room.Config{
					Log:    h.log,
					Rng:    rng,
					Policy: bot.NewRandomPolicy(rng),
					OnEmpty: func(code string) {
						h.inbox <- RemoveRoom{Code: code}
					},
				})
				h.rooms[code] = rm
				msg.Reply <- rm

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // May be nil

			case RemoveRoom:
				delete(h.rooms, msg.Code)
				h.log.Info("room removed", zap.String("game", msg.Code))

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				h.cancel()
			}
		}
	}
}

// freshCode retries until the generated code misses every live room. The
// registry is only touched from the loop, so check-then-use cannot race.
func (h *Hub) freshCode() string {
	for {
		b := make([]byte, codeLength)
		for i := range b {
			b[i] = codeCharset[h.rng.Intn(len(codeCharset))]
		}
		code := string(b)
		if _, taken := h.rooms[code]; !taken {
			return code
		}
	}
}
