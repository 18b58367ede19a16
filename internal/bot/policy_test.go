package bot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mafia-night/backend/internal/engine"
)

func policyGame() *engine.Game {
	g := engine.NewGame("XYZ123", &engine.Player{ID: "n", Name: "Nina"})
	g.Players = append(g.Players,
		&engine.Player{ID: "m1", Name: "Mona", Role: engine.RoleMafia, Alive: true, Bot: true},
		&engine.Player{ID: "m2", Name: "Milo", Role: engine.RoleMafia, Alive: true},
		&engine.Player{ID: "d", Name: "Dora", Role: engine.RoleDoctor, Alive: true, Bot: true},
		&engine.Player{ID: "c1", Name: "Cara", Role: engine.RoleCivilian, Alive: true},
		&engine.Player{ID: "c2", Name: "Cleo", Role: engine.RoleCivilian, Alive: true},
	)
	g.Started = true
	g.Phase = engine.PhaseNight
	return g
}

func TestChooseNightTarget_MafiaNeverTargetsMafiaOrNarrator(t *testing.T) {
	g := policyGame()
	p := NewRandomPolicy(rand.New(rand.NewSource(1)))
	actor := g.PlayerByID("m1")

	for i := 0; i < 64; i++ {
		target, ok := p.ChooseNightTarget(g, actor)
		require.True(t, ok)
		assert.NotEqual(t, engine.RoleMafia, target.Role)
		assert.NotEqual(t, engine.RoleNarrator, target.Role)
	}
}

func TestChooseNightTarget_DoctorMaySelfProtect(t *testing.T) {
	g := policyGame()
	p := NewRandomPolicy(rand.New(rand.NewSource(2)))
	doctor := g.PlayerByID("d")

	self := false
	for i := 0; i < 256 && !self; i++ {
		target, ok := p.ChooseNightTarget(g, doctor)
		require.True(t, ok)
		require.NotEqual(t, engine.RoleNarrator, target.Role)
		if target.ID == doctor.ID {
			self = true
		}
	}
	assert.True(t, self, "doctor never chose self-protection across many draws")
}

func TestChooseVoteTarget_NeverSelfOrNarratorOrDead(t *testing.T) {
	g := policyGame()
	g.Phase = engine.PhaseDay
	g.PlayerByID("c2").Alive = false
	g.PlayerByID("c2").Spectator = true

	p := NewRandomPolicy(rand.New(rand.NewSource(3)))
	voter := g.PlayerByID("m1")

	for i := 0; i < 64; i++ {
		target, ok := p.ChooseVoteTarget(g, voter)
		require.True(t, ok)
		assert.NotEqual(t, voter.ID, target.ID)
		assert.NotEqual(t, engine.RoleNarrator, target.Role)
		assert.True(t, target.Alive)
	}
}

func TestChoose_NoCandidates(t *testing.T) {
	g := engine.NewGame("XYZ123", &engine.Player{ID: "n", Name: "Nina"})
	m := &engine.Player{ID: "m", Name: "Mona", Role: engine.RoleMafia, Alive: true, Bot: true}
	g.Players = append(g.Players, m)

	p := NewRandomPolicy(rand.New(rand.NewSource(4)))

	_, ok := p.ChooseNightTarget(g, m)
	assert.False(t, ok)

	_, ok = p.ChooseVoteTarget(g, m)
	assert.False(t, ok)
}
