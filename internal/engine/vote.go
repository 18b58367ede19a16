package engine

import (
	"fmt"
	"math/rand"
)

// RecordVote replaces the voter's previous vote, keeping per-player tallies
// in step with the vote map: the old target loses a vote in the same update
// that gives the new target one. Reports whether the vote was recorded.
func RecordVote(g *Game, voterID, targetID string) bool {
	if g.Over || g.Phase != PhaseDay {
		return false
	}
	voter := g.PlayerByID(voterID)
	if voter == nil || !voter.Alive || voter.Role == RoleNarrator {
		return false
	}
	target := g.PlayerByID(targetID)
	if target == nil || !target.Alive || target.Role == RoleNarrator {
		return false
	}

	if prevID, ok := g.Votes[voterID]; ok {
		if prev := g.PlayerByID(prevID); prev != nil {
			prev.Votes--
		}
	}
	g.Votes[voterID] = targetID
	target.Votes++
	return true
}

// ResolveVotes tallies the day's votes and eliminates the top target, with
// ties broken uniformly at random among the leaders. No votes means no
// elimination. Sets the public message and returns the eliminated player,
// or nil.
func ResolveVotes(g *Game, rng *rand.Rand) *Player {
	counts := make(map[string]int)
	for _, targetID := range g.Votes {
		counts[targetID]++
	}

	maxVotes := 0
	var leaders []string
	// Walk players in insertion order so the candidate list is stable.
	for _, p := range g.Players {
		n := counts[p.ID]
		if n == 0 {
			continue
		}
		if n > maxVotes {
			maxVotes = n
			leaders = []string{p.ID}
		} else if n == maxVotes {
			leaders = append(leaders, p.ID)
		}
	}

	if len(leaders) == 0 {
		g.PublicMessage = "No one was eliminated today."
		return nil
	}

	eliminated := g.PlayerByID(leaders[rng.Intn(len(leaders))])
	if eliminated == nil {
		g.PublicMessage = "No one was eliminated today."
		return nil
	}

	eliminated.Alive = false
	eliminated.Spectator = true
	g.PublicMessage = fmt.Sprintf("%s was eliminated by vote! They were a %s.", eliminated.Name, eliminated.Role)
	return eliminated
}
