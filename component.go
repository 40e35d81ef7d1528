package ecs

import "github.com/rotisserie/eris"

// ComponentFlags is a bitset of opt-in behaviors declared by a component type.
type ComponentFlags uint64

const (
	// ComponentFlagDefaults is the value for "no flags".
	ComponentFlagDefaults ComponentFlags = 0
	// ComponentFlagNoCleanComponent skips the default re-seat on removal; the
	// cell keeps whatever value it held at the time of removal.
	ComponentFlagNoCleanComponent ComponentFlags = 1 << 0
	// ComponentFlagCallPreDestroy calls PreDestroy on the component before it
	// is re-seated or removed.
	ComponentFlagCallPreDestroy ComponentFlags = 1 << 1
	// ComponentFlagSerializeAsPODType serializes the whole column as one bulk
	// binary write/read instead of per-slot Save/Load calls. Only valid for
	// components whose fields are all fixed-size.
	ComponentFlagSerializeAsPODType ComponentFlags = 1 << 2
	// ComponentFlagNeverSerialize excludes the column from save/load entirely.
	ComponentFlagNeverSerialize ComponentFlags = 1 << 3
	// ComponentFlagFirstFree is the first bit available for caller-defined flags.
	ComponentFlagFirstFree ComponentFlags = 1 << 4
)

// Has reports whether bit is set in f.
func (f ComponentFlags) Has(bit ComponentFlags) bool { return f&bit != 0 }

// Component is the capability every component type must implement.
//
// Name, Mask, Version, Flags and RequiredComponents are treated as static,
// compile-time-resolvable metadata: the registry calls them on a zero value
// of the component type, so implementations must not read instance state
// from them.
type Component interface {
	// Name identifies the component type for serialization and diagnostics.
	// Must be non-empty and unique within an archetype.
	Name() string
	// Mask is this component's single-bit identity. Must be a non-zero power
	// of two, unique among every component type ever registered together.
	Mask() uint64
	// Version is the component's current serialization version (0-255).
	Version() uint8
	// Flags reports this component's opt-in behaviors.
	Flags() ComponentFlags
	// RequiredComponents is the mask of other components that must co-exist
	// in any archetype that declares this component.
	RequiredComponents() uint64
}

// EntitySetter is an optional capability: components that need to know their
// own entity implement SetEntity, and the engine calls it after Create,
// Duplicate, a compression move, and on Load for every live slot.
type EntitySetter interface {
	SetEntity(Entity)
}

// PreDestroyer is an optional capability: components flagged
// ComponentFlagCallPreDestroy implement PreDestroy to run cleanup logic
// immediately before the cell is re-seated or released.
type PreDestroyer interface {
	PreDestroy()
}

// Saver is an optional capability for structured (non-POD) serialization.
// Components that don't implement it fall back to the default JSON codec.
type Saver interface {
	Save(s Stream) error
}

// Loader is the Saver counterpart. storedVersion is the version the data was
// written with, letting a component upconvert an older format.
type Loader interface {
	Load(s Stream, storedVersion uint8) error
}

// componentInfo is the validated, static descriptor extracted from a
// Component's zero value at archetype construction time.
type componentInfo struct {
	name     string
	mask     uint64
	version  uint8
	flags    ComponentFlags
	required uint64
}

// validateComponentInfos enforces invariants at archetype construction:
// every mask is a single bit, masks are pairwise disjoint, names are
// non-empty and pairwise distinct, and every component's required mask is a
// subset of the archetype's composite mask.
func validateComponentInfos(infos []componentInfo) (archetypeMask uint64, err error) {
	seenNames := make(map[string]struct{}, len(infos))
	var mask uint64

	for _, info := range infos {
		if info.name == "" {
			return 0, eris.Wrap(ErrInvalidComponentConfiguration, "component name must not be empty")
		}
		if _, dup := seenNames[info.name]; dup {
			return 0, eris.Wrapf(ErrInvalidComponentConfiguration, "duplicate component name %q", info.name)
		}
		seenNames[info.name] = struct{}{}

		if !isSingleBit(info.mask) {
			return 0, eris.Wrapf(ErrInvalidComponentConfiguration, "component %q mask %#x is not a single bit", info.name, info.mask)
		}
		if mask&info.mask != 0 {
			return 0, eris.Wrapf(ErrInvalidComponentConfiguration, "component %q mask %#x collides with another component in this archetype", info.name, info.mask)
		}
		mask |= info.mask
	}

	for _, info := range infos {
		if info.required&mask != info.required {
			return 0, eris.Wrapf(ErrMissingRequiredComponents, "component %q requires components not present in this archetype (required=%#x, archetype=%#x)", info.name, info.required, mask)
		}
	}

	return mask, nil
}
