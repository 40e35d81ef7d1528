package ecs

import (
	"sort"

	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/rivenforge/ecs/internal/assert"
)

// ArchetypeID is the user-assigned, registry-unique numeric id of an
// archetype.
type ArchetypeID uint8

// ArchetypeFlags is a bitset of opt-in behaviors declared on an archetype.
type ArchetypeFlags uint64

const (
	ArchetypeFlagDefaults ArchetypeFlags = 0
	// ArchetypeFlagCompressableNoEntities allows Compress but forbids
	// CreateEntity/DuplicateEntity: compression invalidates slot indices, so
	// an archetype that hands out live handles can never safely compress.
	ArchetypeFlagCompressableNoEntities ArchetypeFlags = 1 << 0
	// ArchetypeFlagAutoCompressNCalls compresses every N calls to PerformMaintenance.
	ArchetypeFlagAutoCompressNCalls ArchetypeFlags = 1 << 1
	// ArchetypeFlagAutoCompressFreeThreshold compresses once free/capacity reaches a ratio.
	ArchetypeFlagAutoCompressFreeThreshold ArchetypeFlags = 1 << 2
	// ArchetypeFlagAutoReserveNLeft reserves more capacity once fewer than N slots remain.
	ArchetypeFlagAutoReserveNLeft ArchetypeFlags = 1 << 3
	// ArchetypeFlagAutoReserveFullThreshold reserves (doubling) once fill ratio reaches a threshold.
	ArchetypeFlagAutoReserveFullThreshold ArchetypeFlags = 1 << 4
	// ArchetypeFlagNeverSerialize excludes the archetype from save/load entirely.
	ArchetypeFlagNeverSerialize ArchetypeFlags = 1 << 5
	// ArchetypeFlagWithCreateDeleteTracking enables the change-tracking log.
	ArchetypeFlagWithCreateDeleteTracking ArchetypeFlags = 1 << 6
	// ArchetypeFlagFirstFree is the first bit available for caller-defined flags.
	ArchetypeFlagFirstFree ArchetypeFlags = 1 << 7
)

// Has reports whether bit is set in f.
func (f ArchetypeFlags) Has(bit ArchetypeFlags) bool { return f&bit != 0 }

// Archetype owns one slot table and one column per component type it
// declares. It implements create/remove/duplicate, compression, enlargement,
// query iteration over its own entities, and save/load of its slot table
// plus all columns.
type Archetype struct {
	id      ArchetypeID
	name    string
	mask    bitmap.Bitmap
	maskU64 uint64
	flags   ArchetypeFlags
	bounded bool

	columns      []abstractColumn
	columnByName map[string]abstractColumn

	state []EntityState
	free  []uint32

	changes         []Change
	trackingEnabled bool

	maintenanceCalls uint64
	cfg              archetypeConfig

	log zerolog.Logger
}

func newArchetype(id ArchetypeID, name string, builders []ColumnBuilder, cfg archetypeConfig, log zerolog.Logger) (*Archetype, error) {
	columns := make([]abstractColumn, 0, len(builders))
	infos := make([]componentInfo, 0, len(builders))
	for _, build := range builders {
		col, info := build(cfg.capacity, cfg.bounded)
		columns = append(columns, col)
		infos = append(infos, info)
	}

	maskU64, err := validateComponentInfos(infos)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]abstractColumn, len(columns))
	var mask bitmap.Bitmap
	for _, col := range columns {
		nfo := col.info()
		byName[nfo.name] = col
		mask.Set(uint32(bitIndex(nfo.mask)))
	}

	a := &Archetype{
		id:              id,
		name:            name,
		mask:            mask,
		maskU64:         maskU64,
		flags:           cfg.flags,
		bounded:         cfg.bounded,
		columns:         columns,
		columnByName:    byName,
		state:           make([]EntityState, 0, cfg.capacity),
		free:            make([]uint32, 0),
		trackingEnabled: cfg.flags.Has(ArchetypeFlagWithCreateDeleteTracking),
		cfg:             cfg,
		log:             log,
	}
	return a, nil
}

// ID returns the archetype's registry-unique numeric id.
func (a *Archetype) ID() ArchetypeID { return a.id }

// Name returns the archetype's registration name.
func (a *Archetype) Name() string { return a.name }

// Mask returns the archetype's composite component mask.
func (a *Archetype) Mask() uint64 { return a.maskU64 }

// Flags returns the archetype's behavior flags.
func (a *Archetype) Flags() ArchetypeFlags { return a.flags }

// AllowsEntities reports whether CreateEntity/DuplicateEntity are permitted;
// false for archetypes flagged CompressableNoEntities.
func (a *Archetype) AllowsEntities() bool {
	return !a.flags.Has(ArchetypeFlagCompressableNoEntities)
}

// Len returns the number of slots currently allocated (live + tombstoned).
func (a *Archetype) Len() int { return len(a.state) }

// LiveCount returns the number of live (non-tombstoned) slots.
func (a *Archetype) LiveCount() int { return len(a.state) - len(a.free) }

// HasComponents reports whether this archetype's mask is a superset of mask.
func (a *Archetype) HasComponents(mask uint64) bool { return a.maskU64&mask == mask }

// MatchesExact reports whether this archetype's mask equals mask exactly.
func (a *Archetype) MatchesExact(mask uint64) bool { return a.maskU64 == mask }

func (a *Archetype) columnByMaskBit(componentMask uint64) abstractColumn {
	for _, col := range a.columns {
		if col.info().mask == componentMask {
			return col
		}
	}
	return nil
}

// validateID reports whether id's slot index is in range, not tombstoned,
// and its version matches the slot's current version.
func (a *Archetype) validateID(id EntityID) bool {
	idx := id.Index()
	if idx >= uint32(len(a.state)) {
		return false
	}
	st := a.state[idx]
	return !st.Tombstone() && st.Version() == id.Version()
}

// Reserve grows every column and the slot table to at least n slots
// (growable storage only; a no-op on bounded archetypes).
func (a *Archetype) Reserve(n int) error {
	if a.bounded {
		return nil
	}
	if n > cap(a.state) {
		grown := make([]EntityState, len(a.state), n)
		copy(grown, a.state)
		a.state = grown
	}
	for _, col := range a.columns {
		if err := col.reserve(n); err != nil {
			return err
		}
	}
	return nil
}

// Enlarge doubles capacity in all columns, state, and free. Only meaningful
// for growable storage; a no-op for bounded archetypes.
func (a *Archetype) Enlarge() error {
	if a.bounded {
		return nil
	}
	newCap := cap(a.state) * 2
	if newCap == 0 {
		newCap = 1
	}
	if newCap > cap(a.free) {
		grown := make([]uint32, len(a.free), newCap)
		copy(grown, a.free)
		a.free = grown
	}
	return a.Reserve(newCap)
}

// Create allocates a slot. requested, if non-nil, pins a
// specific slot index (must be free or the tail); it returns
// ErrInvalidRequestedIndex if that index is neither. On success it returns
// the new EntityID; on a full archetype with no room to grow it returns
// InvalidEntityID without error, matching the engine's "empty-handle, no
// exception" soft-failure policy.
func (a *Archetype) Create(requested *uint32) (EntityID, error) {
	index, grow, err := a.resolveCreateIndex(requested)
	if err != nil {
		return InvalidEntityID, err
	}

	if grow {
		if len(a.state) == cap(a.state) {
			return InvalidEntityID, nil // no implicit reallocation; caller must Reserve.
		}
		for _, col := range a.columns {
			if err := col.appendDefault(); err != nil {
				a.rollbackAppend(col)
				return InvalidEntityID, nil
			}
		}
		a.state = a.state[:len(a.state)+1]
		a.state[index] = newLiveState(1)
	} else {
		assert.That(a.state[index].Tombstone(), "slot %d returned by resolveCreateIndex is not a tombstone", index)
		a.state[index] = newLiveState(a.state[index].Version())
	}

	id := packEntityID(index, a.state[index].Version())
	if a.trackingEnabled {
		a.changes = append(a.changes, Change{ID: id, Type: ChangeCreate})
	}
	return id, nil
}

// rollbackAppend undoes a partial grow-path append across columns that ran
// ahead of a column that failed to append, keeping every column's length
// equal (invariant P1). This only triggers when bounded columns disagree in
// capacity, which RegisterArchetype prevents by construction; it exists as a
// defensive invariant, not a reachable path in normal operation.
func (a *Archetype) rollbackAppend(failedAt abstractColumn) {
	for _, col := range a.columns {
		if col == failedAt {
			break
		}
		col.popBack()
	}
}

func (a *Archetype) resolveCreateIndex(requested *uint32) (index uint32, grow bool, err error) {
	if requested == nil {
		if len(a.free) > 0 {
			index = a.free[len(a.free)-1]
			a.free = a.free[:len(a.free)-1]
			return index, false, nil
		}
		return uint32(len(a.state)), true, nil
	}
	if *requested == uint32(len(a.state)) {
		return *requested, true, nil
	}
	for i, f := range a.free {
		if f == *requested {
			a.free = append(a.free[:i], a.free[i+1:]...)
			return *requested, false, nil
		}
	}
	return 0, false, eris.Wrapf(ErrInvalidRequestedIndex, "slot %d is neither free nor the tail slot (len=%d)", *requested, len(a.state))
}

// CreateEntity builds an Entity on top of Create, invoking SetEntity on every
// component that declares it. Returns EmptyEntity (no error) when the
// archetype is full or does not allow entities.
func (a *Archetype) CreateEntity() (Entity, error) {
	if !a.AllowsEntities() {
		return EmptyEntity, nil
	}
	id, err := a.Create(nil)
	if err != nil {
		return EmptyEntity, err
	}
	if id == InvalidEntityID {
		return EmptyEntity, nil
	}
	e := newEntity(a, id)
	a.seatEntityHooks(id.Index(), e)
	return e, nil
}

func (a *Archetype) seatEntityHooks(index uint32, e Entity) {
	for _, col := range a.columns {
		col.setEntityHook(int(index), e)
	}
}

// DuplicateEntity allocates a new slot and copies every component cell from
// src's slot into it, then re-seats SetEntity hooks with the new handle.
// src must belong to this archetype and validate; any failure returns
// EmptyEntity.
func (a *Archetype) DuplicateEntity(src Entity) (Entity, error) {
	if src.archetype != a || !a.validateID(src.id) {
		return EmptyEntity, nil
	}
	if !a.AllowsEntities() {
		return EmptyEntity, nil
	}
	dst, err := a.CreateEntity()
	if err != nil || dst.Empty() {
		return EmptyEntity, err
	}
	srcIdx, dstIdx := int(src.id.Index()), int(dst.id.Index())
	for _, col := range a.columns {
		col.moveCell(dstIdx, srcIdx)
	}
	a.seatEntityHooks(uint32(dstIdx), dst)
	return dst, nil
}

// Remove tombstones id's slot. It is idempotent: removing an already-invalid
// id is a silent no-op.
func (a *Archetype) Remove(id EntityID) error {
	if !a.validateID(id) {
		return nil
	}
	index := id.Index()

	if a.trackingEnabled {
		a.changes = append(a.changes, Change{ID: id, Type: ChangeDelete})
	}

	newVersion := nextVersion(a.state[index].Version())
	a.state[index] = a.state[index].withTombstone(newVersion)
	a.free = append(a.free, index)

	for _, col := range a.columns {
		info := col.info()
		if info.flags.Has(ComponentFlagCallPreDestroy) {
			col.callPreDestroy(int(index))
		}
		if !info.flags.Has(ComponentFlagNoCleanComponent) {
			col.resetToDefault(int(index))
		}
	}
	return nil
}

// Clear empties the archetype back to zero slots, keeping its registration
// (used by Registry.Reset and before Load repopulates it).
func (a *Archetype) Clear() {
	a.state = a.state[:0]
	a.free = a.free[:0]
	a.changes = nil
	for _, col := range a.columns {
		col.clear()
	}
}

// Compress removes all tombstones in place. Only offered for archetypes
// flagged CompressableNoEntities, since it invalidates every outstanding
// slot index.
func (a *Archetype) Compress() error {
	if !a.flags.Has(ArchetypeFlagCompressableNoEntities) {
		return eris.New("ecs: Compress called on an archetype that was not registered with ArchetypeFlagCompressableNoEntities")
	}
	if len(a.free) == 0 {
		return nil
	}
	liveBefore := a.LiveCount()
	if liveBefore == 0 {
		a.Clear()
		return nil
	}

	sort.Slice(a.free, func(i, j int) bool { return a.free[i] < a.free[j] })

	for len(a.free) > 0 {
		tail := uint32(len(a.state) - 1)
		if a.free[len(a.free)-1] == tail {
			a.free = a.free[:len(a.free)-1]
			a.state = a.state[:len(a.state)-1]
			for _, col := range a.columns {
				col.popBack()
			}
			continue
		}

		lowest := a.free[0]
		a.free = a.free[1:]
		newTail := uint32(len(a.state) - 1)
		for _, col := range a.columns {
			col.moveCell(int(lowest), int(newTail))
		}
		// The moved-into slot's state byte is deliberately left at literal 0
		// (tombstone=false, version=0) rather than carrying over the moved
		// entity's version. Harmless here because CompressableNoEntities
		// archetypes never hand out live Entity handles for validateID to
		// misjudge.
		a.state[lowest] = EntityState(0)
		a.state = a.state[:len(a.state)-1]
		for _, col := range a.columns {
			col.popBack()
		}
		a.seatEntityHooks(lowest, newTransientEntity(a, packEntityID(lowest, 0)))
	}

	a.free = a.free[:0]
	assert.That(a.LiveCount() == liveBefore, "compress changed live count: before=%d after=%d", liveBefore, a.LiveCount())
	assert.That(len(a.free) == 0, "compress left a non-empty free list")
	a.log.Debug().Uint8("archetypeId", uint8(a.id)).Str("name", a.name).Int("live", liveBefore).Msg("ecs: compressed archetype")
	return nil
}

// PerformMaintenance runs the archetype's opt-in auto-compress/auto-reserve
// policies. It never returns an error to the caller: the auto-compress
// policies discard Compress's error, so on an archetype not flagged
// ArchetypeFlagCompressableNoEntities they leave the slot table unchanged.
func (a *Archetype) PerformMaintenance() {
	a.maintenanceCalls++

	if a.flags.Has(ArchetypeFlagAutoCompressNCalls) && a.cfg.autoCompressEveryN > 0 {
		if a.maintenanceCalls%a.cfg.autoCompressEveryN == 0 {
			_ = a.Compress()
		}
	}
	if a.flags.Has(ArchetypeFlagAutoCompressFreeThreshold) && cap(a.state) > 0 {
		ratio := float64(len(a.free)) / float64(cap(a.state))
		if ratio >= a.cfg.autoCompressFreeRatio {
			_ = a.Compress()
		}
	}
	if a.flags.Has(ArchetypeFlagAutoReserveNLeft) && !a.bounded {
		slotsLeft := cap(a.state) - len(a.state)
		if slotsLeft < a.cfg.autoReserveNLeft {
			_ = a.Enlarge()
		}
	}
	if a.flags.Has(ArchetypeFlagAutoReserveFullThreshold) && !a.bounded && cap(a.state) > 0 {
		ratio := float64(len(a.state)) / float64(cap(a.state))
		if ratio >= a.cfg.autoReserveFullRatio {
			_ = a.Enlarge()
		}
	}
}

// TrackedChanges returns the current change-tracking span.
func (a *Archetype) TrackedChanges() []Change { return a.changes }

// ResetTrackedEntities empties the change-tracking log.
func (a *Archetype) ResetTrackedEntities() { a.changes = nil }

// EnableEntityTracking pauses or resumes change-tracking without discarding
// flag ArchetypeFlagWithCreateDeleteTracking's static configuration.
func (a *Archetype) EnableEntityTracking(enabled bool) { a.trackingEnabled = enabled }

// entityAt reconstructs an Entity handle for a live slot, used while loading
// a stream.
func (a *Archetype) entityAt(index uint32) Entity {
	return newEntity(a, packEntityID(index, a.state[index].Version()))
}
