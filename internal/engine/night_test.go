package engine

import (
	"strings"
	"testing"
)

// nightGame builds a started game in the night phase: narrator, one mafia,
// one doctor, two civilians.
func nightGame() *Game {
	g := NewGame("AB12C9", &Player{ID: "n", Name: "Nina"})
	g.Players = append(g.Players,
		&Player{ID: "m", Name: "Mona", Role: RoleMafia, Alive: true},
		&Player{ID: "d", Name: "Dora", Role: RoleDoctor, Alive: true},
		&Player{ID: "c1", Name: "Cara", Role: RoleCivilian, Alive: true},
		&Player{ID: "c2", Name: "Cleo", Role: RoleCivilian, Alive: true},
	)
	g.Narrator().Alive = true
	g.Started = true
	g.Phase = PhaseNight
	return g
}

func TestRecordNightAction_Legality(t *testing.T) {
	cases := []struct {
		name     string
		actorID  string
		targetID string
		kind     ActionKind
		phase    Phase
		want     bool
	}{
		{name: "mafia kill civilian", actorID: "m", targetID: "c1", kind: ActionKill, phase: PhaseNight, want: true},
		{name: "doctor save civilian", actorID: "d", targetID: "c1", kind: ActionSave, phase: PhaseNight, want: true},
		{name: "doctor save self", actorID: "d", targetID: "d", kind: ActionSave, phase: PhaseNight, want: true},
		{name: "wrong phase", actorID: "m", targetID: "c1", kind: ActionKill, phase: PhaseDay, want: false},
		{name: "targeting narrator", actorID: "m", targetID: "n", kind: ActionKill, phase: PhaseNight, want: false},
		{name: "civilian pretending to be mafia", actorID: "c1", targetID: "c2", kind: ActionKill, phase: PhaseNight, want: false},
		{name: "mafia pretending to be doctor", actorID: "m", targetID: "c1", kind: ActionSave, phase: PhaseNight, want: false},
		{name: "unknown target", actorID: "m", targetID: "zz", kind: ActionKill, phase: PhaseNight, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := nightGame()
			g.Phase = tc.phase
			got := RecordNightAction(g, tc.actorID, tc.targetID, tc.kind)
			if got != tc.want {
				t.Fatalf("recorded=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestRecordNightAction_MafiaCannotTargetMafia(t *testing.T) {
	g := nightGame()
	g.Players = append(g.Players, &Player{ID: "m2", Name: "Milo", Role: RoleMafia, Alive: true})

	if RecordNightAction(g, "m", "m2", ActionKill) {
		t.Fatalf("mafia targeting mafia should be rejected")
	}
}

func TestRecordNightAction_DeadActorIgnored(t *testing.T) {
	g := nightGame()
	g.PlayerByID("m").Alive = false

	if RecordNightAction(g, "m", "c1", ActionKill) {
		t.Fatalf("dead actor should not act")
	}
}

func TestRecordNightAction_ResubmitOverwrites(t *testing.T) {
	g := nightGame()
	if !RecordNightAction(g, "m", "c1", ActionKill) {
		t.Fatalf("first action rejected")
	}
	if !RecordNightAction(g, "m", "c2", ActionKill) {
		t.Fatalf("second action rejected")
	}

	if len(g.Actions) != 1 {
		t.Fatalf("resubmit duplicated the pending action: %d entries", len(g.Actions))
	}
	if g.Actions["m"].TargetID != "c2" {
		t.Fatalf("resubmit did not overwrite: %+v", g.Actions["m"])
	}
}

func TestNightReady(t *testing.T) {
	g := nightGame()
	if NightReady(g) {
		t.Fatalf("ready with no actions")
	}

	RecordNightAction(g, "m", "c1", ActionKill)
	if NightReady(g) {
		t.Fatalf("ready without a doctor action while the doctor lives")
	}

	RecordNightAction(g, "d", "c2", ActionSave)
	if !NightReady(g) {
		t.Fatalf("not ready with all required actions in")
	}
}

func TestNightReady_NoLivingDoctor(t *testing.T) {
	g := nightGame()
	g.PlayerByID("d").Alive = false

	RecordNightAction(g, "m", "c1", ActionKill)
	if !NightReady(g) {
		t.Fatalf("a dead doctor should not block the night")
	}
}

func TestResolveNight_DoctorSavesTarget(t *testing.T) {
	g := nightGame()
	RecordNightAction(g, "m", "c1", ActionKill)
	RecordNightAction(g, "d", "c1", ActionSave)

	victim := ResolveNight(g)
	if victim != nil {
		t.Fatalf("nobody should die on a save, got %s", victim.Name)
	}
	if !g.PlayerByID("c1").Alive {
		t.Fatalf("saved player died")
	}
	if !strings.Contains(g.PublicMessage, "successfully saved Cara") {
		t.Fatalf("public message missing save: %q", g.PublicMessage)
	}
	if !strings.Contains(g.Message, "(civilian)") {
		t.Fatalf("narrator message missing role: %q", g.Message)
	}
}

func TestResolveNight_KillLandsWhenDoctorProtectsElsewhere(t *testing.T) {
	g := nightGame()
	RecordNightAction(g, "m", "c1", ActionKill)
	RecordNightAction(g, "d", "c2", ActionSave)

	victim := ResolveNight(g)
	if victim == nil || victim.ID != "c1" {
		t.Fatalf("want c1 eliminated, got %+v", victim)
	}
	if g.PlayerByID("c1").Alive || !g.PlayerByID("c1").Spectator {
		t.Fatalf("victim not marked dead spectator")
	}
	if g.PlayerByID("c2").Alive != true {
		t.Fatalf("doctor's target should be unaffected")
	}
	if !strings.Contains(g.PublicMessage, "Cara was killed by the Mafia!") {
		t.Fatalf("public message missing kill: %q", g.PublicMessage)
	}
	if strings.Contains(g.PublicMessage, "protected") {
		t.Fatalf("doctor's target leaked to the room: %q", g.PublicMessage)
	}
	if !strings.Contains(g.Message, "The Doctor protected Cleo tonight.") {
		t.Fatalf("narrator message missing protection note: %q", g.Message)
	}
}

func TestResolveNight_Peaceful(t *testing.T) {
	g := nightGame()
	RecordNightAction(g, "d", "c1", ActionSave)

	if victim := ResolveNight(g); victim != nil {
		t.Fatalf("unexpected victim %s", victim.Name)
	}
	if !strings.Contains(g.PublicMessage, "The night passes peacefully") {
		t.Fatalf("public message: %q", g.PublicMessage)
	}
}

func TestNightStatus(t *testing.T) {
	g := nightGame()

	status := NightStatus(g)
	if !strings.Contains(status, "Waiting for mafia actions...") || !strings.Contains(status, "Waiting for doctor action...") {
		t.Fatalf("empty-night status wrong: %q", status)
	}

	RecordNightAction(g, "m", "c1", ActionKill)
	RecordNightAction(g, "d", "c2", ActionSave)

	status = NightStatus(g)
	if !strings.Contains(status, "Mafia actions: Mona targeting Cara") {
		t.Fatalf("status missing mafia line: %q", status)
	}
	if !strings.Contains(status, "Doctor (Dora) protecting Cleo") {
		t.Fatalf("status missing doctor line: %q", status)
	}
}
