package ecs_test

import (
	"testing"

	"github.com/rivenforge/ecs"
	"github.com/rivenforge/ecs/internal/testutils"
)

func newWireTestRegistry(t *testing.T) (*ecs.Registry, *ecs.Archetype) {
	t.Helper()
	reg := ecs.NewRegistry()
	a, err := reg.RegisterArchetype(1, "player", []ecs.ColumnBuilder{
		ecs.ForComponent[testutils.Health](testutils.Health{}),
		ecs.ForComponent[testutils.PlayerTag](testutils.PlayerTag{}),
		ecs.ForComponent[testutils.Level](testutils.Level{}),
	})
	if err != nil {
		t.Fatalf("RegisterArchetype: %v", err)
	}
	return reg, a
}

// TestSaveLoadRoundTrip saves a populated registry and loads it back into the
// SAME registry (Load always Resets first): since archetype ids are stable
// across the round trip, entity handles obtained before Save remain valid
// ways to inspect the slots Load just repopulated.
func TestSaveLoadRoundTrip(t *testing.T) {
	reg, a := newWireTestRegistry(t)

	e1, _ := a.CreateEntity()
	hp1, _ := ecs.GetComponent[testutils.Health](e1)
	hp1.Value = 10
	tag1, _ := ecs.GetComponent[testutils.PlayerTag](e1)
	tag1.Tag = "alice"

	e2, _ := a.CreateEntity()
	hp2, _ := ecs.GetComponent[testutils.Health](e2)
	hp2.Value = 20
	tag2, _ := ecs.GetComponent[testutils.PlayerTag](e2)
	tag2.Tag = "bob"

	// Tombstone a third slot so the stream carries a non-empty free list.
	thirdID, _ := a.Create(nil)
	_ = a.Remove(thirdID)
	liveBefore := a.LiveCount()

	s := ecs.NewMemoryStream(nil)
	if err := reg.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.SetPosition(0); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	if err := reg.Load(s); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if a.LiveCount() != liveBefore {
		t.Fatalf("LiveCount after load = %d, want %d", a.LiveCount(), liveBefore)
	}

	loadedHP1, ok := ecs.GetComponent[testutils.Health](e1)
	if !ok {
		t.Fatal("GetComponent[Health] failed for e1 after load")
	}
	if loadedHP1.Value != 10 {
		t.Errorf("e1 Health.Value after load = %d, want 10", loadedHP1.Value)
	}
	loadedTag2, ok := ecs.GetComponent[testutils.PlayerTag](e2)
	if !ok {
		t.Fatal("GetComponent[PlayerTag] failed for e2 after load")
	}
	if loadedTag2.Tag != "bob" {
		t.Errorf("e2 PlayerTag.Tag after load = %q, want %q", loadedTag2.Tag, "bob")
	}
}

func TestSaveSkipsNeverSerializeArchetype(t *testing.T) {
	reg := ecs.NewRegistry()
	a, err := reg.RegisterArchetype(1, "ephemeral", []ecs.ColumnBuilder{
		ecs.ForComponent[testutils.Health](testutils.Health{}),
	}, ecs.WithFlags(ecs.ArchetypeFlagNeverSerialize))
	if err != nil {
		t.Fatalf("RegisterArchetype: %v", err)
	}
	_, _ = a.CreateEntity()

	s := ecs.NewMemoryStream(nil)
	if err := reg.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.SetPosition(0); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	if err := reg.Load(s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Load always Resets first; since the archetype was never in the stream,
	// it stays empty after Load.
	if a.LiveCount() != 0 {
		t.Errorf("LiveCount() = %d, want 0: NeverSerialize archetype should not round-trip", a.LiveCount())
	}
}

func TestSaveSingleLoadSingleRoundTrip(t *testing.T) {
	_, a := newWireTestRegistry(t)
	e, _ := a.CreateEntity()
	hp, _ := ecs.GetComponent[testutils.Health](e)
	hp.Value = 55
	tag, _ := ecs.GetComponent[testutils.PlayerTag](e)
	tag.Tag = "solo"

	s := ecs.NewMemoryStream(nil)
	if err := ecs.SaveSingle(s, e); err != nil {
		t.Fatalf("SaveSingle: %v", err)
	}

	// Zero out in place, then reload onto the same live slot.
	hp.Value = 0
	tag.Tag = ""

	if err := s.SetPosition(0); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	if err := ecs.LoadSingle(s, e); err != nil {
		t.Fatalf("LoadSingle: %v", err)
	}

	hp2, _ := ecs.GetComponent[testutils.Health](e)
	if hp2.Value != 55 {
		t.Errorf("Health.Value after LoadSingle = %d, want 55", hp2.Value)
	}
	tag2, _ := ecs.GetComponent[testutils.PlayerTag](e)
	if tag2.Tag != "solo" {
		t.Errorf("PlayerTag.Tag after LoadSingle = %q, want %q", tag2.Tag, "solo")
	}
}

func TestBadStreamVersionIsRejected(t *testing.T) {
	raw := []byte{250, 0, 0, 0, 0, 0, 0, 0} // streamVersion=250, archetypeCount=0
	s := ecs.NewMemoryStream(raw)
	reg := ecs.NewRegistry()
	if err := reg.Load(s); err == nil {
		t.Fatal("expected ErrBadStreamVersion for a stream version newer than supported")
	}
}
