package engine

// CheckGameEnd evaluates the win condition over living non-narrator players
// and, when the game is decided, sets the game-over flag and the victory
// message. Mafia win as soon as they match the rest of the town, which also
// covers the 1v1 that would otherwise play out in the next night.
func CheckGameEnd(g *Game) bool {
	var mafia, town int
	for _, p := range g.Players {
		if !p.Alive || p.Role == RoleNarrator {
			continue
		}
		if p.Role == RoleMafia {
			mafia++
		} else {
			town++
		}
	}

	if mafia == 0 {
		g.PublicMessage = "Game Over - Civilians Win! All mafia have been eliminated."
		g.Over = true
		return true
	}
	if mafia >= town {
		g.PublicMessage = "Game Over - Mafia Wins! They now control the town."
		g.Over = true
		return true
	}
	return false
}
