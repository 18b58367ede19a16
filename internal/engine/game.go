package engine

import (
	"errors"
	"strings"
)

var ErrTooFewPlayers = errors.New("not enough players to assign roles")

type Role string

const (
	// RoleUnassigned doubles as the redacted value in snapshots; the
	// client treats a missing role as unknown.
	RoleUnassigned Role = ""
	RoleNarrator   Role = "narrator"
	RoleMafia      Role = "mafia"
	RoleDoctor     Role = "doctor"
	RoleCivilian   Role = "civilian"
)

type Phase string

const (
	PhaseLobby Phase = "lobby"
	PhaseNight Phase = "night"
	PhaseDay   Phase = "day"
)

type ActionKind string

const (
	ActionKill ActionKind = "mafia"
	ActionSave ActionKind = "doctor"
)

type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         Role   `json:"role,omitempty"`
	Alive        bool   `json:"isAlive"`
	Votes        int    `json:"votes"`
	Spectator    bool   `json:"isSpectator"`
	Bot          bool   `json:"isBot,omitempty"`
	Disconnected bool   `json:"disconnected,omitempty"`
}

type NightAction struct {
	TargetID string     `json:"targetId"`
	Kind     ActionKind `json:"action"`
}

// Game is the authoritative per-room state. It is owned and mutated by a
// single room actor; engine functions never retain references to it.
type Game struct {
	Code          string                 `json:"gameCode"`
	Players       []*Player              `json:"players"`
	Phase         Phase                  `json:"phase"`
	Started       bool                   `json:"isGameStarted"`
	Over          bool                   `json:"isGameOver"`
	Actions       map[string]NightAction `json:"-"`
	Votes         map[string]string      `json:"-"`
	Message       string                 `json:"message,omitempty"`
	PublicMessage string                 `json:"publicMessage,omitempty"`
}

// NewGame creates a lobby-phase game with the creator installed as narrator.
func NewGame(code string, narrator *Player) *Game {
	narrator.Role = RoleNarrator
	narrator.Alive = true
	return &Game{
		Code:    code,
		Players: []*Player{narrator},
		Phase:   PhaseLobby,
		Actions: make(map[string]NightAction),
		Votes:   make(map[string]string),
	}
}

func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByName matches case-insensitively, same as the join duplicate check.
func (g *Game) PlayerByName(name string) *Player {
	for _, p := range g.Players {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

func (g *Game) Narrator() *Player {
	for _, p := range g.Players {
		if p.Role == RoleNarrator {
			return p
		}
	}
	return nil
}

// Living returns living, non-spectator players, narrator included.
func (g *Game) Living() []*Player {
	var out []*Player
	for _, p := range g.Players {
		if p.Alive && !p.Spectator {
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) LivingMafia() []*Player {
	var out []*Player
	for _, p := range g.Players {
		if p.Alive && p.Role == RoleMafia {
			out = append(out, p)
		}
	}
	return out
}

// RebindID rewrites a player's identity everywhere it appears: the player
// record, pending vote keys and targets, and pending action keys and
// targets. Without the sweep a reconnected voter's old vote would stay
// keyed by the stale ID and count twice on a re-vote.
func (g *Game) RebindID(oldID, newID string) {
	if oldID == newID {
		return
	}
	p := g.PlayerByID(oldID)
	if p == nil {
		return
	}
	p.ID = newID

	if target, ok := g.Votes[oldID]; ok {
		delete(g.Votes, oldID)
		g.Votes[newID] = target
	}
	for voter, target := range g.Votes {
		if target == oldID {
			g.Votes[voter] = newID
		}
	}

	if act, ok := g.Actions[oldID]; ok {
		delete(g.Actions, oldID)
		g.Actions[newID] = act
	}
	for actor, act := range g.Actions {
		if act.TargetID == oldID {
			act.TargetID = newID
			g.Actions[actor] = act
		}
	}
}

// Clone deep-copies the game for out-of-loop inspection. Wire snapshots go
// through SnapshotFor instead.
func (g *Game) Clone() *Game {
	cp := *g
	cp.Players = make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		pc := *p
		cp.Players = append(cp.Players, &pc)
	}
	cp.Actions = make(map[string]NightAction, len(g.Actions))
	for k, v := range g.Actions {
		cp.Actions[k] = v
	}
	cp.Votes = make(map[string]string, len(g.Votes))
	for k, v := range g.Votes {
		cp.Votes[k] = v
	}
	return &cp
}

func (g *Game) LivingDoctor() *Player {
	for _, p := range g.Players {
		if p.Alive && p.Role == RoleDoctor {
			return p
		}
	}
	return nil
}
