package ecs

import "testing"

type testIntComponent struct{ V int }

func (testIntComponent) Name() string              { return "testIntComponent" }
func (testIntComponent) Mask() uint64               { return 1 << 0 }
func (testIntComponent) Version() uint8             { return 1 }
func (testIntComponent) Flags() ComponentFlags      { return ComponentFlagSerializeAsPODType }
func (testIntComponent) RequiredComponents() uint64 { return 0 }

type testJSONComponent struct {
	Tag string `json:"tag"`
}

func (testJSONComponent) Name() string              { return "testJSONComponent" }
func (testJSONComponent) Mask() uint64               { return 1 << 1 }
func (testJSONComponent) Version() uint8             { return 1 }
func (testJSONComponent) Flags() ComponentFlags      { return ComponentFlagDefaults }
func (testJSONComponent) RequiredComponents() uint64 { return 0 }

type hookComponent struct {
	entity      Entity
	destroyed   bool
	setEntityAt int
}

func (hookComponent) Name() string              { return "hookComponent" }
func (hookComponent) Mask() uint64               { return 1 << 2 }
func (hookComponent) Version() uint8             { return 1 }
func (hookComponent) Flags() ComponentFlags      { return ComponentFlagCallPreDestroy }
func (hookComponent) RequiredComponents() uint64 { return 0 }

func (h *hookComponent) SetEntity(e Entity) { h.entity = e }
func (h *hookComponent) PreDestroy()        { h.destroyed = true }

func TestColumnAppendDefaultNeverReallocates(t *testing.T) {
	c := newColumn[testIntComponent](componentInfo{name: "testIntComponent", mask: 1}, testIntComponent{V: -1}, false, 2)
	if err := c.appendDefault(); err != nil {
		t.Fatalf("appendDefault 1: %v", err)
	}
	if err := c.appendDefault(); err != nil {
		t.Fatalf("appendDefault 2: %v", err)
	}
	if err := c.appendDefault(); err != errNoCapacity {
		t.Fatalf("appendDefault past capacity = %v, want errNoCapacity", err)
	}
	if c.len() != 2 {
		t.Errorf("len() = %d, want 2", c.len())
	}
	if c.cells[0].V != -1 || c.cells[1].V != -1 {
		t.Errorf("appended cells were not set to the default value: %+v", c.cells)
	}
}

func TestColumnReserveGrowsGrowableOnly(t *testing.T) {
	growable := newColumn[testIntComponent](componentInfo{name: "x", mask: 1}, testIntComponent{}, false, 1)
	if err := growable.reserve(8); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if growable.cap() < 8 {
		t.Errorf("growable cap() = %d, want >= 8", growable.cap())
	}

	bounded := newColumn[testIntComponent](componentInfo{name: "x", mask: 1}, testIntComponent{}, true, 1)
	if err := bounded.reserve(8); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if bounded.cap() != 1 {
		t.Errorf("bounded reserve changed capacity to %d, want 1 (no-op)", bounded.cap())
	}
}

func TestColumnResizeGrowsAndShrinks(t *testing.T) {
	c := newColumn[testIntComponent](componentInfo{name: "x", mask: 1}, testIntComponent{V: 9}, false, 0)
	if err := c.resize(3); err != nil {
		t.Fatalf("resize up: %v", err)
	}
	if c.len() != 3 {
		t.Fatalf("len() = %d, want 3", c.len())
	}
	for i, cell := range c.cells {
		if cell.V != 9 {
			t.Errorf("cells[%d].V = %d, want default 9", i, cell.V)
		}
	}
	c.cells[2].V = 42
	if err := c.resize(1); err != nil {
		t.Fatalf("resize down: %v", err)
	}
	if c.len() != 1 {
		t.Errorf("len() after shrink = %d, want 1", c.len())
	}
}

func TestColumnResizeBoundedRejectsGrowPastCapacity(t *testing.T) {
	c := newColumn[testIntComponent](componentInfo{name: "x", mask: 1}, testIntComponent{}, true, 2)
	if err := c.resize(5); err == nil {
		t.Fatal("expected error resizing a bounded column past its fixed capacity")
	}
}

func TestColumnMoveCellAndResetToDefault(t *testing.T) {
	c := newColumn[testIntComponent](componentInfo{name: "x", mask: 1}, testIntComponent{V: 0}, false, 2)
	_ = c.appendDefault()
	_ = c.appendDefault()
	c.cells[0].V = 100
	c.moveCell(1, 0)
	if c.cells[1].V != 100 {
		t.Errorf("moveCell(1,0) did not copy value: %+v", c.cells)
	}
	c.resetToDefault(1)
	if c.cells[1].V != 0 {
		t.Errorf("resetToDefault did not restore default value: %+v", c.cells)
	}
}

func TestColumnHooksAreCalledThroughTypeAssertion(t *testing.T) {
	c := newColumn[hookComponent](componentInfo{name: "hookComponent", mask: 1}, hookComponent{}, false, 1)
	_ = c.appendDefault()

	e := Entity{archetype: &Archetype{id: 7}, id: packEntityID(0, 1)}
	c.setEntityHook(0, e)
	if !c.cells[0].entity.Equal(e) {
		t.Errorf("SetEntity hook did not run: %+v", c.cells[0])
	}

	c.callPreDestroy(0)
	if !c.cells[0].destroyed {
		t.Error("PreDestroy hook did not run")
	}
}

func TestColumnSavePODRoundTrip(t *testing.T) {
	c := newColumn[testIntComponent](componentInfo{name: "testIntComponent", mask: 1, version: 1, flags: ComponentFlagSerializeAsPODType}, testIntComponent{}, false, 3)
	_ = c.appendDefault()
	_ = c.appendDefault()
	_ = c.appendDefault()
	c.cells[0].V = 1
	c.cells[1].V = 2
	c.cells[2].V = 3

	states := []EntityState{newLiveState(1), newLiveState(1), newLiveState(1)}
	s := NewMemoryStream(nil)
	if err := c.save(s, states); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := newColumn[testIntComponent](componentInfo{name: "testIntComponent", mask: 1, version: 1, flags: ComponentFlagSerializeAsPODType}, testIntComponent{}, false, 0)
	if err := loaded.resize(3); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if err := s.SetPosition(0); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	if err := loaded.load(s, 1, 3, states); err != nil {
		t.Fatalf("load: %v", err)
	}
	for i, want := range []int{1, 2, 3} {
		if loaded.cells[i].V != want {
			t.Errorf("loaded.cells[%d].V = %d, want %d", i, loaded.cells[i].V, want)
		}
	}
}

func TestColumnSaveJSONRoundTrip(t *testing.T) {
	c := newColumn[testJSONComponent](componentInfo{name: "testJSONComponent", mask: 1, version: 1}, testJSONComponent{}, false, 2)
	_ = c.appendDefault()
	_ = c.appendDefault()
	c.cells[0].Tag = "alpha"
	c.cells[1].Tag = "beta"
	states := []EntityState{newLiveState(1), newLiveState(1)}

	s := NewMemoryStream(nil)
	if err := c.save(s, states); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := newColumn[testJSONComponent](componentInfo{name: "testJSONComponent", mask: 1, version: 1}, testJSONComponent{}, false, 0)
	if err := loaded.resize(2); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if err := s.SetPosition(0); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	if err := loaded.load(s, 1, 2, states); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.cells[0].Tag != "alpha" || loaded.cells[1].Tag != "beta" {
		t.Errorf("loaded cells = %+v", loaded.cells)
	}
}

func TestColumnSaveSkipsTombstonedSlots(t *testing.T) {
	c := newColumn[testJSONComponent](componentInfo{name: "testJSONComponent", mask: 1, version: 1}, testJSONComponent{}, false, 2)
	_ = c.appendDefault()
	_ = c.appendDefault()
	c.cells[0].Tag = "kept"
	c.cells[1].Tag = "ghost"
	states := []EntityState{newLiveState(1), newLiveState(1).withTombstone(2)}

	s := NewMemoryStream(nil)
	if err := c.save(s, states); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := newColumn[testJSONComponent](componentInfo{name: "testJSONComponent", mask: 1, version: 1}, testJSONComponent{Tag: "default"}, false, 0)
	if err := loaded.resize(2); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if err := s.SetPosition(0); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	if err := loaded.load(s, 1, 2, states); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.cells[0].Tag != "kept" {
		t.Errorf("cells[0].Tag = %q, want %q", loaded.cells[0].Tag, "kept")
	}
	if loaded.cells[1].Tag != "default" {
		t.Errorf("tombstoned slot should be left untouched at its resize default, got %q", loaded.cells[1].Tag)
	}
}

func TestForComponentBuildsColumnWithZeroValueInfo(t *testing.T) {
	builder := ForComponent[testIntComponent](testIntComponent{V: -1})
	col, info := builder(4, false)
	if info.name != "testIntComponent" {
		t.Errorf("info.name = %q, want testIntComponent", info.name)
	}
	if info.mask != 1 {
		t.Errorf("info.mask = %#x, want 1", info.mask)
	}
	if col.cap() != 4 {
		t.Errorf("col.cap() = %d, want 4", col.cap())
	}
}
