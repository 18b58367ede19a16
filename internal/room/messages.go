package room

import (
	"github.com/mafia-night/backend/internal/engine"
	"github.com/mafia-night/backend/internal/protocol"
)

// Client is a participant's connection as the room sees it: an identity and
// an outbox the room writes notifications to.
type Client struct {
	ID     string
	Outbox chan protocol.ServerMessage
}

type Msg interface{ isRoomMsg() }

type Join struct {
	Client     Client
	PlayerName string
	Reply      chan error
}

type Start struct{ ClientID string }

type NightAction struct {
	ClientID string
	TargetID string
	Kind     engine.ActionKind
}

type Vote struct {
	ClientID string
	TargetID string
}

type NextPhase struct{ ClientID string }

type Reconnect struct {
	Client     Client
	PlayerID   string
	PlayerName string
	Reply      chan error
}

type Disconnect struct{ ClientID string }

type Leave struct{ ClientID string }

type AddBots struct {
	ClientID string
	Count    int
}

type Restart struct{ ClientID string }

// GetView reflects internal state without data races; test-only.
type GetView struct {
	Reply chan View
}

type Shutdown struct{}

type View struct {
	NumClients int
	Game       *engine.Game
}

func (Join) isRoomMsg()        {}
func (Start) isRoomMsg()       {}
func (NightAction) isRoomMsg() {}
func (Vote) isRoomMsg()        {}
func (NextPhase) isRoomMsg()   {}
func (Reconnect) isRoomMsg()   {}
func (Disconnect) isRoomMsg()  {}
func (Leave) isRoomMsg()       {}
func (AddBots) isRoomMsg()     {}
func (Restart) isRoomMsg()     {}
func (GetView) isRoomMsg()     {}
func (Shutdown) isRoomMsg()    {}
