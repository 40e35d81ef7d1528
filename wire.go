package ecs

import (
	"io"

	"github.com/rotisserie/eris"
)

// streamVersion is the wire format version this package writes and the
// newest version it accepts on load.
const streamVersion = 2

const maxComponentPayloadBytes = ^uint32(0)

// Save writes every registered archetype not flagged NeverSerialize to s, in
// registration order.
func (reg *Registry) Save(s Stream) error {
	reg.fireEvent(SerializationEvent{Type: EventSaveStart})

	live := make([]*Archetype, 0, len(reg.order))
	for _, a := range reg.order {
		if !a.flags.Has(ArchetypeFlagNeverSerialize) {
			live = append(live, a)
		}
	}

	if err := writeUint32(s, streamVersion); err != nil {
		return err
	}
	if err := writeUint32(s, uint32(len(live))); err != nil {
		return err
	}

	for _, a := range live {
		if err := writeUint8(s, uint8(a.id)); err != nil {
			return err
		}
		lenPos, err := s.Position()
		if err != nil {
			return err
		}
		if err := writeUint32(s, 0); err != nil { // placeholder, patched below
			return err
		}
		bodyStart, err := s.Position()
		if err != nil {
			return err
		}

		reg.fireEvent(SerializationEvent{Type: EventArchetypeStart, ArchetypeID: a.id})
		if err := a.saveBody(s, reg); err != nil {
			return eris.Wrapf(err, "saving archetype %d (%s)", a.id, a.name)
		}
		reg.fireEvent(SerializationEvent{Type: EventArchetypeFinished, ArchetypeID: a.id})

		bodyEnd, err := s.Position()
		if err != nil {
			return err
		}
		if err := s.SetPosition(lenPos); err != nil {
			return err
		}
		if err := writeUint32(s, uint32(bodyEnd-bodyStart)); err != nil {
			return err
		}
		if err := s.SetPosition(bodyEnd); err != nil {
			return err
		}
	}

	reg.fireEvent(SerializationEvent{Type: EventSaveFinished})
	return nil
}

// saveBody writes one archetype's slot table and component columns.
func (a *Archetype) saveBody(s Stream, reg *Registry) error {
	if err := writeUint32(s, uint32(len(a.state))); err != nil {
		return err
	}
	for _, st := range a.state {
		if err := writeUint8(s, uint8(st)); err != nil {
			return err
		}
	}
	if err := writeUint32(s, uint32(len(a.free))); err != nil {
		return err
	}
	for _, f := range a.free {
		if err := writeUint32(s, f); err != nil {
			return err
		}
	}

	for _, col := range a.columns {
		info := col.info()
		if info.flags.Has(ComponentFlagNeverSerialize) {
			continue
		}
		if len(info.name) == 0 || len(info.name) > 255 {
			return eris.Wrapf(ErrInvalidComponentConfiguration, "component name %q has invalid length for the wire format", info.name)
		}
		if err := writeUint8(s, uint8(len(info.name))); err != nil {
			return err
		}
		if _, err := s.Write([]byte(info.name)); err != nil {
			return err
		}
		if err := writeUint8(s, info.version); err != nil {
			return err
		}

		lenPos, err := s.Position()
		if err != nil {
			return err
		}
		if err := writeUint32(s, 0); err != nil {
			return err
		}
		payloadStart, err := s.Position()
		if err != nil {
			return err
		}

		reg.fireEvent(SerializationEvent{Type: EventSaveComponent, ArchetypeID: a.id, Version: info.version, ComponentMask: info.mask, ComponentName: info.name})
		if err := col.save(s, a.state); err != nil {
			return err
		}

		payloadEnd, err := s.Position()
		if err != nil {
			return err
		}
		payloadLen := payloadEnd - payloadStart
		if payloadLen+4 > int64(maxComponentPayloadBytes) {
			return eris.Wrapf(ErrTooLargeComponent, "component %q payload is %d bytes", info.name, payloadLen)
		}
		if err := s.SetPosition(lenPos); err != nil {
			return err
		}
		if err := writeUint32(s, uint32(payloadLen)+4); err != nil { // includes this field's own 4 bytes
			return err
		}
		if err := s.SetPosition(payloadEnd); err != nil {
			return err
		}
	}

	return writeUint8(s, 0) // sentinel terminating the component list
}

// Load resets the registry and repopulates every already-registered
// archetype from s. Archetypes present in the stream but not currently
// registered are skipped with a warning; this is a soft failure, not an
// error.
func (reg *Registry) Load(s Stream) error {
	reg.Reset()
	reg.fireEvent(SerializationEvent{Type: EventLoadStart})

	sv, err := readUint32(s)
	if err != nil {
		return err
	}
	if sv > streamVersion {
		return eris.Wrapf(ErrBadStreamVersion, "stream version %d is newer than the %d this build supports", sv, streamVersion)
	}

	archCount, err := readUint32(s)
	if err != nil {
		return err
	}

	for i := uint32(0); i < archCount; i++ {
		id, err := readUint8(s)
		if err != nil {
			return err
		}
		bodyLen, err := readUint32(s)
		if err != nil {
			return err
		}
		bodyStart, err := s.Position()
		if err != nil {
			return err
		}

		arch, ok := reg.byID[ArchetypeID(id)]
		if !ok {
			reg.log.Warn().Uint8("archetypeId", id).Msg("ecs: skipping unknown archetype id found in stream")
			if err := s.SetPosition(bodyStart + int64(bodyLen)); err != nil {
				return err
			}
			continue
		}

		reg.fireEvent(SerializationEvent{Type: EventArchetypeStart, ArchetypeID: arch.id})
		if err := arch.loadBody(s, reg, sv); err != nil {
			return eris.Wrapf(err, "loading archetype %d (%s)", arch.id, arch.name)
		}
		reg.fireEvent(SerializationEvent{Type: EventArchetypeFinished, ArchetypeID: arch.id})
	}

	for _, a := range reg.order {
		a.PerformMaintenance()
	}

	reg.fireEvent(SerializationEvent{Type: EventLoadFinished})
	return nil
}

// loadBody reads one archetype's slot table and component columns,
// resizing columns before re-seating SetEntity hooks on live slots, then
// streaming each column's payload.
func (a *Archetype) loadBody(s Stream, reg *Registry, streamVer uint32) error {
	count, err := readUint32(s)
	if err != nil {
		return err
	}
	a.state = make([]EntityState, count)
	for i := range a.state {
		b, err := readUint8(s)
		if err != nil {
			return err
		}
		a.state[i] = EntityState(b)
	}

	freeCount, err := readUint32(s)
	if err != nil {
		return err
	}
	a.free = make([]uint32, freeCount)
	for i := range a.free {
		v, err := readUint32(s)
		if err != nil {
			return err
		}
		a.free[i] = v
	}

	for _, col := range a.columns {
		if err := col.resize(int(count)); err != nil {
			return err
		}
	}

	for idx, st := range a.state {
		if st.Tombstone() {
			continue
		}
		e := a.entityAt(uint32(idx))
		for _, col := range a.columns {
			col.setEntityHook(idx, e)
		}
	}

	for {
		nameLen, err := readUint8(s)
		if err != nil {
			return err
		}
		if nameLen == 0 {
			break
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(s, nameBytes); err != nil {
			return err
		}
		name := string(nameBytes)

		storedVersion, err := readUint8(s)
		if err != nil {
			return err
		}
		payloadBytes, err := readUint32(s)
		if err != nil {
			return err
		}
		startPos, err := s.Position()
		if err != nil {
			return err
		}
		declared := int64(payloadBytes) - 4

		col := a.columnByName[name]
		if col == nil {
			if streamVer < 2 {
				return eris.Wrapf(ErrCannotSkipComponent, "unknown component %q in a v%d stream", name, streamVer)
			}
			reg.log.Warn().Str("component", name).Str("archetype", a.name).Msg("ecs: skipping unknown component column found in stream")
			if err := s.SetPosition(startPos + declared); err != nil {
				return err
			}
			continue
		}

		reg.fireEvent(SerializationEvent{Type: EventLoadComponent, ArchetypeID: a.id, Version: storedVersion, ComponentMask: col.info().mask, ComponentName: name})
		if err := col.load(s, storedVersion, int(count), a.state); err != nil {
			return err
		}

		endPos, err := s.Position()
		if err != nil {
			return err
		}
		consumed := endPos - startPos
		switch {
		case consumed < declared:
			if err := s.SetPosition(startPos + declared); err != nil {
				return err
			}
		case consumed > declared:
			return eris.Wrapf(ErrInvalidDataStream, "component %q read %d bytes past its declared %d-byte payload", name, consumed-declared, declared)
		}
	}

	return nil
}

// SaveSingle writes exactly one entity's live components with no slot-table
// header: per component, the same name/version/length-prefixed framing as
// the whole-archetype form, so LoadSingle can identify fields without an
// external schema, terminated by the same zero-length sentinel.
func SaveSingle(s Stream, e Entity) error {
	if e.Empty() || !e.archetype.validateID(e.id) {
		return eris.New("ecs: cannot SaveSingle an empty or invalid entity")
	}
	a := e.archetype
	idx := int(e.id.Index())

	for _, col := range a.columns {
		info := col.info()
		if info.flags.Has(ComponentFlagNeverSerialize) {
			continue
		}
		if err := writeUint8(s, uint8(len(info.name))); err != nil {
			return err
		}
		if _, err := s.Write([]byte(info.name)); err != nil {
			return err
		}
		if err := writeUint8(s, info.version); err != nil {
			return err
		}
		lenPos, err := s.Position()
		if err != nil {
			return err
		}
		if err := writeUint32(s, 0); err != nil {
			return err
		}
		payloadStart, err := s.Position()
		if err != nil {
			return err
		}
		if err := col.saveSingle(s, idx); err != nil {
			return err
		}
		payloadEnd, err := s.Position()
		if err != nil {
			return err
		}
		if err := s.SetPosition(lenPos); err != nil {
			return err
		}
		if err := writeUint32(s, uint32(payloadEnd-payloadStart)+4); err != nil {
			return err
		}
		if err := s.SetPosition(payloadEnd); err != nil {
			return err
		}
	}
	return writeUint8(s, 0)
}

// LoadSingle reads a record written by SaveSingle into the live slot backing
// e, which must already be a valid entity of the target archetype (its
// fields are overwritten in place; no new slot is allocated).
func LoadSingle(s Stream, e Entity) error {
	if e.Empty() || !e.archetype.validateID(e.id) {
		return eris.New("ecs: cannot LoadSingle into an empty or invalid entity")
	}
	a := e.archetype
	idx := int(e.id.Index())

	for {
		nameLen, err := readUint8(s)
		if err != nil {
			return err
		}
		if nameLen == 0 {
			break
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(s, nameBytes); err != nil {
			return err
		}
		name := string(nameBytes)
		storedVersion, err := readUint8(s)
		if err != nil {
			return err
		}
		payloadBytes, err := readUint32(s)
		if err != nil {
			return err
		}
		startPos, err := s.Position()
		if err != nil {
			return err
		}
		declared := int64(payloadBytes) - 4

		col := a.columnByName[name]
		if col == nil {
			if err := s.SetPosition(startPos + declared); err != nil {
				return err
			}
			continue
		}
		if err := col.loadSingle(s, idx, storedVersion); err != nil {
			return err
		}
		endPos, err := s.Position()
		if err != nil {
			return err
		}
		if consumed := endPos - startPos; consumed != declared {
			if consumed < declared {
				if err := s.SetPosition(startPos + declared); err != nil {
					return err
				}
			} else {
				return eris.Wrapf(ErrInvalidDataStream, "component %q read past its declared payload in a single-entity record", name)
			}
		}
	}
	return nil
}
