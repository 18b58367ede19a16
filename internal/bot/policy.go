package bot

import (
	"math/rand"

	"github.com/mafia-night/backend/internal/engine"
)

// Policy is the decision surface for computer-controlled players. Both the
// night handler and the vote handler go through it, so target legality is
// defined in exactly one place.
type Policy interface {
	ChooseNightTarget(g *engine.Game, actor *engine.Player) (*engine.Player, bool)
	ChooseVoteTarget(g *engine.Game, voter *engine.Player) (*engine.Player, bool)
}

// RandomPolicy picks uniformly among legal targets.
type RandomPolicy struct {
	rng *rand.Rand
}

func NewRandomPolicy(rng *rand.Rand) *RandomPolicy {
	return &RandomPolicy{rng: rng}
}

// ChooseNightTarget picks a living non-narrator target. Mafia never target
// fellow mafia; the doctor may protect anyone, including themselves.
func (p *RandomPolicy) ChooseNightTarget(g *engine.Game, actor *engine.Player) (*engine.Player, bool) {
	var candidates []*engine.Player
	for _, c := range g.Living() {
		if c.Role == engine.RoleNarrator {
			continue
		}
		if actor.Role == engine.RoleMafia && c.Role == engine.RoleMafia {
			continue
		}
		candidates = append(candidates, c)
	}
	return p.pick(candidates)
}

// ChooseVoteTarget picks a living non-narrator target other than the voter.
func (p *RandomPolicy) ChooseVoteTarget(g *engine.Game, voter *engine.Player) (*engine.Player, bool) {
	var candidates []*engine.Player
	for _, c := range g.Living() {
		if c.ID == voter.ID || c.Role == engine.RoleNarrator {
			continue
		}
		candidates = append(candidates, c)
	}
	return p.pick(candidates)
}

func (p *RandomPolicy) pick(candidates []*engine.Player) (*engine.Player, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[p.rng.Intn(len(candidates))], true
}
