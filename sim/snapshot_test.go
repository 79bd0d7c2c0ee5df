// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestBuildSnapshot_SeqMonotonic(t *testing.T) {
	simulation := New(1, 3, zerolog.Nop())
	simulation.AddPlayer(1, "racer", VehicleBalanced, 0)

	one := simulation.BuildSnapshot(0)
	two := simulation.BuildSnapshot(TickPeriodMs)

	if two.Seq != one.Seq+1 {
		t.Errorf("expected monotonic seq, got %d then %d", one.Seq, two.Seq)
	}
}

func TestBuildSnapshot_PlayerOrder(t *testing.T) {
	simulation := New(1, 3, zerolog.Nop())
	simulation.AddPlayer(1, "behind", VehicleBalanced, 0)
	simulation.AddPlayer(2, "ahead", VehicleBalanced, 0)
	simulation.AddPlayer(3, "done", VehicleBalanced, 0)

	simulation.Player(1).Progress.DistanceMeters = 100
	simulation.Player(2).Progress.DistanceMeters = 250
	simulation.Player(3).Progress.FinishedAtMs = 5000

	order := simulation.BuildSnapshot(0).Race.PlayerOrder
	expected := []PlayerID{3, 2, 1}
	for i := range expected {
		if order[i] != expected[i] {
			t.Fatalf("expected order %v, got %v", expected, order)
		}
	}
}

func TestBuildSnapshot_ExpiredEffectsOmitted(t *testing.T) {
	simulation := New(1, 3, zerolog.Nop())
	player := simulation.AddPlayer(1, "racer", VehicleBalanced, 0)

	ApplyEffect(player, EffectSlow, 1000, 0.5, 0)
	ApplyEffect(player, EffectShield, 5000, 1, 0)

	snapshot := simulation.BuildSnapshot(2000)
	if len(snapshot.Players[0].Effects) != 1 {
		t.Fatalf("expected 1 live effect, got %d", len(snapshot.Players[0].Effects))
	}
	if snapshot.Players[0].Effects[0].Type != EffectShield {
		t.Error("expected the shield to survive")
	}
}

func TestBuildSnapshot_CarriesTrackItems(t *testing.T) {
	// Seeds are free to lay out differently, but the snapshot must carry
	// whatever the track has.
	simulation := New(424242, 3, zerolog.Nop())
	simulation.AddPlayer(1, "racer", VehicleBalanced, 0)

	snapshot := simulation.BuildSnapshot(0)
	track := simulation.Track()

	if len(snapshot.Hazards) != len(track.Hazards) {
		t.Errorf("expected %d hazards, got %d", len(track.Hazards), len(snapshot.Hazards))
	}
	if len(snapshot.Powerups) != len(track.Powerups) {
		t.Errorf("expected %d powerups, got %d", len(track.Powerups), len(snapshot.Powerups))
	}
	for _, powerup := range snapshot.Powerups {
		if !powerup.Active {
			t.Error("uncollected pads must start active")
		}
	}
}
