package protocol

import "github.com/mafia-night/backend/internal/engine"

// Client -> server intent names.
const (
	MsgCreateGame     = "createGame"
	MsgJoinGame       = "joinGame"
	MsgStartGame      = "startGame"
	MsgGameAction     = "gameAction"
	MsgVote           = "vote"
	MsgNextPhase      = "nextPhase"
	MsgReconnect      = "reconnect"
	MsgLeaveGame      = "leaveGame"
	MsgRestartGame    = "restart-game"
	MsgAddTestPlayers = "addTestPlayers"
)

// Server -> client notification names.
const (
	EvtPlayerInfo        = "playerInfo"
	EvtGameState         = "gameState"
	EvtError             = "error"
	EvtPlayerReconnected = "playerReconnected"
)

type ClientMessage struct {
	Type       string            `json:"type"`
	GameCode   string            `json:"gameCode,omitempty"`
	PlayerName string            `json:"playerName,omitempty"`
	PlayerID   string            `json:"playerId,omitempty"`
	TargetID   string            `json:"targetId,omitempty"`
	Action     engine.ActionKind `json:"action,omitempty"`
	NumPlayers int               `json:"numPlayers,omitempty"`
}

type ServerMessage struct {
	Type       string         `json:"type"`
	Player     *engine.Player `json:"player,omitempty"`
	State      *engine.Game   `json:"state,omitempty"`
	Error      string         `json:"error,omitempty"`
	PlayerName string         `json:"playerName,omitempty"`
}
