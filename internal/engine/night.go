package engine

import (
	"fmt"
	"strings"
)

// RecordNightAction stores (or overwrites) a pending night action after
// legality checks. Illegal submissions are dropped without feedback so a
// malformed client can't probe roles through error responses. Reports
// whether the action was recorded.
func RecordNightAction(g *Game, actorID, targetID string, kind ActionKind) bool {
	if g.Over || g.Phase != PhaseNight {
		return false
	}
	actor := g.PlayerByID(actorID)
	if actor == nil || !actor.Alive {
		return false
	}
	// The action kind is the actor's role on the wire; anything else is a
	// civilian (or worse) pretending to have a night action.
	if Role(kind) != actor.Role {
		return false
	}
	target := g.PlayerByID(targetID)
	if target == nil || !target.Alive || target.Role == RoleNarrator {
		return false
	}
	if actor.Role == RoleMafia && target.Role == RoleMafia {
		return false
	}
	g.Actions[actorID] = NightAction{TargetID: targetID, Kind: kind}
	return true
}

// NightReady reports whether every living mafia member has acted and the
// living doctor (if any) has acted.
func NightReady(g *Game) bool {
	mafia := g.LivingMafia()
	if len(mafia) == 0 {
		return false
	}
	for _, m := range mafia {
		if _, ok := g.Actions[m.ID]; !ok {
			return false
		}
	}
	if doc := g.LivingDoctor(); doc != nil {
		if _, ok := g.Actions[doc.ID]; !ok {
			return false
		}
	}
	return true
}

// NightStatus summarizes drop-ins so far for the narrator's eyes only.
func NightStatus(g *Game) string {
	var mafiaLines []string
	for _, p := range g.Players {
		act, ok := g.Actions[p.ID]
		if !ok || act.Kind != ActionKill {
			continue
		}
		if target := g.PlayerByID(act.TargetID); target != nil {
			mafiaLines = append(mafiaLines, fmt.Sprintf("%s targeting %s", p.Name, target.Name))
		}
	}

	mafiaStatus := "Waiting for mafia actions..."
	if len(mafiaLines) > 0 {
		mafiaStatus = "Mafia actions: " + strings.Join(mafiaLines, ", ")
	}

	doctorStatus := "Waiting for doctor action..."
	for _, p := range g.Players {
		act, ok := g.Actions[p.ID]
		if !ok || act.Kind != ActionSave {
			continue
		}
		if target := g.PlayerByID(act.TargetID); target != nil {
			doctorStatus = fmt.Sprintf("Doctor (%s) protecting %s", p.Name, target.Name)
		}
	}

	return mafiaStatus + "\n" + doctorStatus
}

// mafiaTarget returns the first mafia kill target in player order. With two
// mafia the first recorded intent wins; the second is treated as backup.
func mafiaTarget(g *Game) *Player {
	for _, p := range g.Players {
		if act, ok := g.Actions[p.ID]; ok && act.Kind == ActionKill {
			return g.PlayerByID(act.TargetID)
		}
	}
	return nil
}

func doctorTarget(g *Game) *Player {
	doc := g.LivingDoctor()
	if doc == nil {
		return nil
	}
	if act, ok := g.Actions[doc.ID]; ok {
		return g.PlayerByID(act.TargetID)
	}
	return nil
}

// ResolveNight applies the accumulated night actions: a kill lands unless
// the doctor picked the same target. Sets the narrator message and public
// message, and returns the victim if someone died. Callers are expected to
// check NightReady first and to run the win evaluator on the result.
func ResolveNight(g *Game) *Player {
	killTarget := mafiaTarget(g)
	saveTarget := doctorTarget(g)

	var results []string
	var victim *Player

	if killTarget != nil {
		if saveTarget != nil && saveTarget.ID == killTarget.ID {
			g.Message = fmt.Sprintf("%s (%s) was targeted but saved by the doctor!", killTarget.Name, killTarget.Role)
			results = append(results, fmt.Sprintf("The Doctor successfully saved %s from the Mafia's attack!", killTarget.Name))
		} else {
			killTarget.Alive = false
			killTarget.Spectator = true
			g.Message = fmt.Sprintf("%s (%s) was killed by the mafia!", killTarget.Name, killTarget.Role)
			results = append(results, fmt.Sprintf("%s was killed by the Mafia! They were a %s.", killTarget.Name, killTarget.Role))
			victim = killTarget
		}
		// Where the doctor went is narrator detail; broadcasting it would
		// out the doctor's target to the room.
		if saveTarget != nil && saveTarget.ID != killTarget.ID {
			g.Message += fmt.Sprintf("\nThe Doctor protected %s tonight.", saveTarget.Name)
		}
	} else {
		results = append(results, "The night passes peacefully...")
	}

	g.PublicMessage = strings.Join(results, "\n")
	return victim
}
