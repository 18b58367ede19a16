package engine

// VisibleRole decides which role a viewer is allowed to see for a subject.
// Returns RoleUnassigned when the role is hidden. The narrator's own role is
// public knowledge; everything else is visible only to the subject, the
// narrator, dead players, and everyone once the game is over.
func VisibleRole(viewer, subject *Player, g *Game) Role {
	if subject == nil {
		return RoleUnassigned
	}
	if subject.Role == RoleNarrator || g.Over {
		return subject.Role
	}
	if viewer == nil {
		return RoleUnassigned
	}
	if viewer.ID == subject.ID || viewer.Role == RoleNarrator || viewer.Spectator {
		return subject.Role
	}
	return RoleUnassigned
}

// SnapshotFor builds the state a single viewer is allowed to receive: roles
// filtered through VisibleRole and the narrator-only status line stripped
// for everyone else. The pending action and vote maps never leave the room.
func SnapshotFor(g *Game, viewerID string) *Game {
	viewer := g.PlayerByID(viewerID)

	snap := &Game{
		Code:          g.Code,
		Phase:         g.Phase,
		Started:       g.Started,
		Over:          g.Over,
		PublicMessage: g.PublicMessage,
		Players:       make([]*Player, 0, len(g.Players)),
	}
	if viewer != nil && viewer.Role == RoleNarrator {
		snap.Message = g.Message
	}
	for _, p := range g.Players {
		cp := *p
		cp.Role = VisibleRole(viewer, p, g)
		snap.Players = append(snap.Players, &cp)
	}
	return snap
}
