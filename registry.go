package ecs

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Registry owns archetypes keyed by composite mask and by numeric id,
// dispatches cross-archetype queries, drives whole-registry save/load, and
// forwards lifecycle events to a Listener.
type Registry struct {
	byID   map[ArchetypeID]*Archetype
	byMask map[uint64]*Archetype
	order  []*Archetype // registration order; query dispatch visits archetypes in this order

	log      zerolog.Logger
	listener Listener
}

// NewRegistry constructs an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	listener := cfg.listener
	if listener == nil {
		listener = NopListener{}
	}
	return &Registry{
		byID:     make(map[ArchetypeID]*Archetype),
		byMask:   make(map[uint64]*Archetype),
		log:      cfg.logger,
		listener: listener,
	}
}

func (reg *Registry) fireEvent(e SerializationEvent) {
	reg.listener.SerializationEvent(e)
}

// RegisterArchetype constructs an archetype from the given component column
// builders, validates its metadata, and inserts it keyed by both mask and
// id. Duplicate mask returns ErrDuplicateArchetype; duplicate id returns
// ErrDoubleId.
func (reg *Registry) RegisterArchetype(id ArchetypeID, name string, components []ColumnBuilder, opts ...ArchetypeOption) (*Archetype, error) {
	if _, exists := reg.byID[id]; exists {
		return nil, eris.Wrapf(ErrDoubleId, "archetype id %d already registered", id)
	}

	cfg := defaultArchetypeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	a, err := newArchetype(id, name, components, cfg, reg.log)
	if err != nil {
		return nil, err
	}

	if _, exists := reg.byMask[a.maskU64]; exists {
		return nil, eris.Wrapf(ErrDuplicateArchetype, "archetype mask %#x already registered (name=%s)", a.maskU64, name)
	}

	reg.byID[id] = a
	reg.byMask[a.maskU64] = a
	reg.order = append(reg.order, a)

	reg.listener.RegisteredArchetype(a)
	reg.log.Debug().Uint8("archetypeId", uint8(id)).Str("name", name).Uint64("mask", a.maskU64).Msg("ecs: registered archetype")

	return a, nil
}

// FindArchetypeByID returns the archetype registered under id, or
// ErrUnregisteredArchetype.
func (reg *Registry) FindArchetypeByID(id ArchetypeID) (*Archetype, error) {
	a, ok := reg.byID[id]
	if !ok {
		return nil, eris.Wrapf(ErrUnregisteredArchetype, "no archetype registered with id %d", id)
	}
	return a, nil
}

// FindArchetype returns the archetype whose composite mask exactly equals
// mask, or ErrUnregisteredArchetype.
func (reg *Registry) FindArchetype(mask uint64) (*Archetype, error) {
	a, ok := reg.byMask[mask]
	if !ok {
		return nil, eris.Wrapf(ErrUnregisteredArchetype, "no archetype registered with mask %#x", mask)
	}
	return a, nil
}

// FindArchetypesContaining returns every registered archetype whose mask is
// a superset of mask, in registration order.
func (reg *Registry) FindArchetypesContaining(mask uint64) []*Archetype {
	var out []*Archetype
	for _, a := range reg.order {
		if a.HasComponents(mask) {
			out = append(out, a)
		}
	}
	return out
}

// Archetypes returns every registered archetype in registration order. The
// returned slice must not be mutated by the caller.
func (reg *Registry) Archetypes() []*Archetype { return reg.order }

// PerformMaintenance fans out to every registered archetype's
// PerformMaintenance.
func (reg *Registry) PerformMaintenance() {
	for _, a := range reg.order {
		a.PerformMaintenance()
	}
}

// Reset clears every registered archetype's entities; registrations
// themselves (ids, masks, columns) persist. All outstanding handles become
// invalid.
func (reg *Registry) Reset() {
	for _, a := range reg.order {
		a.Clear()
	}
}
