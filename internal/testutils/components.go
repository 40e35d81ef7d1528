// Package testutils provides a small, fixed set of component types shared by
// the engine's own tests, so each test file doesn't redeclare its own
// throwaway structs.
package testutils

import "github.com/rivenforge/ecs"

const (
	healthMask uint64 = 1 << iota
	positionMask
	velocityMask
	experienceMask
	playerTagMask
	levelMask
	mapComponentMask
)

type Health struct {
	Value int `json:"value"`
}

func (Health) Name() string              { return "Health" }
func (Health) Mask() uint64              { return healthMask }
func (Health) Version() uint8            { return 1 }
func (Health) Flags() ecs.ComponentFlags { return ecs.ComponentFlagSerializeAsPODType }
func (Health) RequiredComponents() uint64 { return 0 }

type Position struct{ X, Y int }

func (Position) Name() string              { return "Position" }
func (Position) Mask() uint64              { return positionMask }
func (Position) Version() uint8            { return 1 }
func (Position) Flags() ecs.ComponentFlags  { return ecs.ComponentFlagSerializeAsPODType }
func (Position) RequiredComponents() uint64 { return 0 }

type Velocity struct{ X, Y int }

func (Velocity) Name() string              { return "Velocity" }
func (Velocity) Mask() uint64              { return velocityMask }
func (Velocity) Version() uint8            { return 1 }
func (Velocity) Flags() ecs.ComponentFlags  { return ecs.ComponentFlagSerializeAsPODType }
func (Velocity) RequiredComponents() uint64 { return 0 }

type Experience struct{ Value int }

func (Experience) Name() string              { return "Experience" }
func (Experience) Mask() uint64              { return experienceMask }
func (Experience) Version() uint8            { return 1 }
func (Experience) Flags() ecs.ComponentFlags  { return ecs.ComponentFlagDefaults }
func (Experience) RequiredComponents() uint64 { return 0 }

// PlayerTag requires Level to co-exist in any archetype that declares it, so
// tests can exercise RequiredComponents validation.
type PlayerTag struct{ Tag string }

func (PlayerTag) Name() string              { return "PlayerTag" }
func (PlayerTag) Mask() uint64              { return playerTagMask }
func (PlayerTag) Version() uint8            { return 1 }
func (PlayerTag) Flags() ecs.ComponentFlags  { return ecs.ComponentFlagDefaults }
func (PlayerTag) RequiredComponents() uint64 { return levelMask }

type Level struct{ Value int }

func (Level) Name() string              { return "Level" }
func (Level) Mask() uint64              { return levelMask }
func (Level) Version() uint8            { return 1 }
func (Level) Flags() ecs.ComponentFlags  { return ecs.ComponentFlagDefaults }
func (Level) RequiredComponents() uint64 { return 0 }

// MapComponent has no fixed layout, so it always goes through the default
// JSON codec rather than ComponentFlagSerializeAsPODType.
type MapComponent struct {
	Items map[string]int `json:"items"`
}

func (MapComponent) Name() string              { return "MapComponent" }
func (MapComponent) Mask() uint64              { return mapComponentMask }
func (MapComponent) Version() uint8            { return 1 }
func (MapComponent) Flags() ecs.ComponentFlags  { return ecs.ComponentFlagDefaults }
func (MapComponent) RequiredComponents() uint64 { return 0 }
