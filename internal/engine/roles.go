package engine

import "math/rand"

// roleCounts derives the non-narrator role multiset from a single formula:
// one doctor, two mafia once more than five players share the night, the
// rest civilians.
func roleCounts(n int) (mafia, doctors int) {
	mafia = 1
	if n > 5 {
		mafia = 2
	}
	return mafia, 1
}

// AssignRoles deals a shuffled role to every non-narrator player and resets
// per-game player state. The narrator keeps their role. Requires at least
// four players (narrator plus the minimum mafia/doctor/civilian split).
func AssignRoles(g *Game, rng *rand.Rand) error {
	if len(g.Players) < 4 {
		return ErrTooFewPlayers
	}

	n := len(g.Players) - 1
	mafia, doctors := roleCounts(n)

	roles := make([]Role, 0, n)
	for i := 0; i < mafia; i++ {
		roles = append(roles, RoleMafia)
	}
	for i := 0; i < doctors; i++ {
		roles = append(roles, RoleDoctor)
	}
	for len(roles) < n {
		roles = append(roles, RoleCivilian)
	}

	// Fisher-Yates
	for i := len(roles) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}

	next := 0
	for _, p := range g.Players {
		if p.Role != RoleNarrator {
			p.Role = roles[next]
			next++
		}
		p.Alive = true
		p.Votes = 0
		p.Spectator = false
	}
	return nil
}
