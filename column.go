package ecs

import (
	"io"
	"unsafe"

	goccyjson "github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// abstractColumn is the non-generic face of column[T] the archetype drives.
// Go has no way to hold a heterogeneous list of column[T] for differing T
// without erasing the type parameter behind an interface, which is exactly
// the role abstractColumn plays.
type abstractColumn interface {
	info() componentInfo
	len() int
	cap() int
	bounded() bool
	reserve(n int) error
	resize(n int) error
	appendDefault() error
	popBack()
	clear()
	resetToDefault(i int)
	callPreDestroy(i int)
	setEntityHook(i int, e Entity)
	moveCell(dst, src int)
	save(s Stream, states []EntityState) error
	load(s Stream, storedVersion uint8, count int, states []EntityState) error
	saveSingle(s Stream, i int) error
	loadSingle(s Stream, i int, storedVersion uint8) error
}

// errNoCapacity is returned by appendDefault when the column cannot grow
// without an explicit reserve call (growable) or has hit its fixed capacity
// (bounded). It signals "no room" to the caller; it is never returned to a
// library user directly -- Archetype.Create translates it into an empty
// Entity per spec's failure policy.
var errNoCapacity = eris.New("ecs: column has no spare capacity")

// column is the columnar storage for one component type within one
// archetype: a dense, index-aligned slice of T plus the default value used
// to re-seat a cell on removal or to fill a newly appended cell.
type column[T Component] struct {
	nfo          componentInfo
	isBounded    bool
	defaultValue T
	cells        []T
}

func newColumn[T Component](nfo componentInfo, defaultValue T, isBounded bool, capacity int) *column[T] {
	return &column[T]{
		nfo:          nfo,
		isBounded:    isBounded,
		defaultValue: defaultValue,
		cells:        make([]T, 0, capacity),
	}
}

func (c *column[T]) info() componentInfo { return c.nfo }
func (c *column[T]) len() int            { return len(c.cells) }
func (c *column[T]) cap() int            { return cap(c.cells) }
func (c *column[T]) bounded() bool       { return c.isBounded }

// reserve grows the backing array to at least n, reallocating once. Bounded
// columns treat this as a no-op: their capacity was fixed at construction.
func (c *column[T]) reserve(n int) error {
	if c.isBounded {
		return nil
	}
	if n <= cap(c.cells) {
		return nil
	}
	grown := make([]T, len(c.cells), n)
	copy(grown, c.cells)
	c.cells = grown
	return nil
}

// appendDefault extends the column by one cell set to the default value. It
// never reallocates: if there is no spare capacity it returns errNoCapacity
// instead of letting append grow the backing array.
func (c *column[T]) appendDefault() error {
	if len(c.cells) == cap(c.cells) {
		return errNoCapacity
	}
	c.cells = c.cells[:len(c.cells)+1]
	c.cells[len(c.cells)-1] = c.defaultValue
	return nil
}

func (c *column[T]) popBack() {
	c.cells = c.cells[:len(c.cells)-1]
}

func (c *column[T]) clear() {
	c.cells = c.cells[:0]
}

func (c *column[T]) resetToDefault(i int) {
	c.cells[i] = c.defaultValue
}

func (c *column[T]) callPreDestroy(i int) {
	if pd, ok := any(&c.cells[i]).(PreDestroyer); ok {
		pd.PreDestroy()
	}
}

func (c *column[T]) setEntityHook(i int, e Entity) {
	if es, ok := any(&c.cells[i]).(EntitySetter); ok {
		es.SetEntity(e)
	}
}

func (c *column[T]) moveCell(dst, src int) {
	c.cells[dst] = c.cells[src]
}

// resize grows or shrinks the column to exactly n cells, used by Load to
// size a column to the stream's recorded slot count before streaming
// payloads into it. Unlike appendDefault, resize is explicitly allowed to
// reallocate for growable storage; only implicit reallocation from append
// is forbidden.
func (c *column[T]) resize(n int) error {
	switch {
	case n <= len(c.cells):
		c.cells = c.cells[:n]
		return nil
	case n <= cap(c.cells):
		old := len(c.cells)
		c.cells = c.cells[:n]
		for i := old; i < n; i++ {
			c.cells[i] = c.defaultValue
		}
		return nil
	case c.isBounded:
		return eris.Wrapf(ErrInvalidDataStream, "stream declares %d slots but bounded component %q has capacity %d", n, c.nfo.name, cap(c.cells))
	default:
		grown := make([]T, n)
		copy(grown, c.cells)
		for i := len(c.cells); i < n; i++ {
			grown[i] = c.defaultValue
		}
		c.cells = grown
		return nil
	}
}

// podBytes returns a zero-copy byte view over cells' raw memory, used to
// bulk-write/read POD-flagged components. encoding/binary's reflection-based
// Write/Read rejects any struct with an int/uint field ("not fixed-sized in
// type"), which every POD-flagged fixture component has, so the bulk path
// reinterprets the slice's backing memory directly instead. Like a C struct
// dumped as raw bytes, this trades portability across architectures with
// differing int width or endianness for speed; that tradeoff is what the
// POD flag opts into.
func podBytes[T any](cells []T) []byte {
	if len(cells) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&cells[0])), len(cells)*int(unsafe.Sizeof(zero)))
}

func (c *column[T]) save(s Stream, states []EntityState) error {
	if c.nfo.flags.Has(ComponentFlagSerializeAsPODType) {
		_, err := s.Write(podBytes(c.cells))
		return err
	}
	for i := range c.cells {
		if i < len(states) && states[i].Tombstone() {
			continue
		}
		if err := saveComponentValue(s, &c.cells[i]); err != nil {
			return eris.Wrapf(err, "saving component %q at slot %d", c.nfo.name, i)
		}
	}
	return nil
}

func (c *column[T]) load(s Stream, storedVersion uint8, count int, states []EntityState) error {
	if c.nfo.flags.Has(ComponentFlagSerializeAsPODType) {
		if storedVersion != c.nfo.version {
			return eris.Wrapf(ErrInvalidPodDataVersion, "component %q stored version %d, registered version %d", c.nfo.name, storedVersion, c.nfo.version)
		}
		_, err := io.ReadFull(s, podBytes(c.cells[:count]))
		return err
	}
	for i := 0; i < count; i++ {
		if i < len(states) && states[i].Tombstone() {
			continue
		}
		if err := loadComponentValue(s, &c.cells[i], storedVersion); err != nil {
			return eris.Wrapf(err, "loading component %q at slot %d", c.nfo.name, i)
		}
	}
	return nil
}

// saveSingle writes exactly one cell's component, used by the no-slot-table
// single-entity save/load variants. POD components still go through the
// per-value codec here rather than a bulk write, since there is no
// surrounding slot table to bulk-write against.
func (c *column[T]) saveSingle(s Stream, i int) error {
	return saveComponentValue(s, &c.cells[i])
}

func (c *column[T]) loadSingle(s Stream, i int, storedVersion uint8) error {
	return loadComponentValue(s, &c.cells[i], storedVersion)
}

// saveComponentValue dispatches to the component's custom Saver if it
// implements one, otherwise falls back to the default JSON codec with a
// length prefix so load can delimit the value without a schema.
func saveComponentValue[T any](s Stream, v *T) error {
	if saver, ok := any(v).(Saver); ok {
		return saver.Save(s)
	}
	data, err := goccyjson.Marshal(v)
	if err != nil {
		return err
	}
	if err := writeUint32(s, uint32(len(data))); err != nil {
		return err
	}
	_, err = s.Write(data)
	return err
}

func loadComponentValue[T any](s Stream, v *T, storedVersion uint8) error {
	if loader, ok := any(v).(Loader); ok {
		return loader.Load(s, storedVersion)
	}
	n, err := readUint32(s)
	if err != nil {
		return err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s, buf); err != nil {
		return err
	}
	return goccyjson.Unmarshal(buf, v)
}

// ColumnBuilder constructs a column for a specific component type at
// archetype-registration time, given the archetype's chosen capacity and
// storage discipline. ForComponent is the generic constructor library users
// call; ColumnBuilder itself stays non-generic so a []ColumnBuilder can
// describe a heterogeneous archetype.
type ColumnBuilder func(capacity int, bounded bool) (abstractColumn, componentInfo)

// ForComponent builds a ColumnBuilder for component type T, using
// defaultValue to re-seat cells on removal and to fill newly appended or
// grown cells.
func ForComponent[T Component](defaultValue T) ColumnBuilder {
	return func(capacity int, bounded bool) (abstractColumn, componentInfo) {
		var zero T
		nfo := componentInfo{
			name:     zero.Name(),
			mask:     zero.Mask(),
			version:  zero.Version(),
			flags:    zero.Flags(),
			required: zero.RequiredComponents(),
		}
		return newColumn[T](nfo, defaultValue, bounded, capacity), nfo
	}
}
