package ecs

import "github.com/rivenforge/ecs/internal/assert"

// Iterator1 is a precomputed, bounded-fanout query over a single component
// type. Initialize scans every registered archetype once and records the
// matching ones; subsequent Iterate/IterateEntity calls skip the mask
// filter and replay the cached list. max bounds how many archetypes may
// match: exceeding it is a configuration error caught by an assertion, not
// a runtime error returned to the caller.
type Iterator1[A Component] struct {
	max        int
	archetypes []*Archetype
}

// NewIterator1 builds an iterator that accepts at most max matching archetypes.
func NewIterator1[A Component](max int) *Iterator1[A] { return &Iterator1[A]{max: max} }

// Initialize resolves and caches the archetypes matching A's mask.
func (it *Iterator1[A]) Initialize(reg *Registry) {
	mask := queryMask1[A]()
	it.archetypes = it.archetypes[:0]
	for _, arch := range reg.order {
		if arch.HasComponents(mask) {
			it.archetypes = append(it.archetypes, arch)
		}
	}
	assert.That(len(it.archetypes) <= it.max, "Iterator1 bounded fanout exceeded: %d archetypes matched, max is %d", len(it.archetypes), it.max)
}

// Iterate replays the cached archetype list, invoking fn for every live slot.
func (it *Iterator1[A]) Iterate(fn func(*A)) {
	for _, arch := range it.archetypes {
		colA, _ := columnFor[A](arch)
		for i, st := range arch.state {
			if st.Tombstone() {
				continue
			}
			fn(&colA.cells[i])
		}
	}
}

// IterateEntity is Iterate with the Entity handle passed first.
func (it *Iterator1[A]) IterateEntity(fn func(Entity, *A)) {
	for _, arch := range it.archetypes {
		colA, _ := columnFor[A](arch)
		for i, st := range arch.state {
			if st.Tombstone() {
				continue
			}
			fn(arch.entityAt(uint32(i)), &colA.cells[i])
		}
	}
}

// Iterator2 is Iterator1 over two component types.
type Iterator2[A, B Component] struct {
	max        int
	archetypes []*Archetype
}

func NewIterator2[A, B Component](max int) *Iterator2[A, B] { return &Iterator2[A, B]{max: max} }

func (it *Iterator2[A, B]) Initialize(reg *Registry) {
	mask := queryMask2[A, B]()
	it.archetypes = it.archetypes[:0]
	for _, arch := range reg.order {
		if arch.HasComponents(mask) {
			it.archetypes = append(it.archetypes, arch)
		}
	}
	assert.That(len(it.archetypes) <= it.max, "Iterator2 bounded fanout exceeded: %d archetypes matched, max is %d", len(it.archetypes), it.max)
}

func (it *Iterator2[A, B]) Iterate(fn func(*A, *B)) {
	for _, arch := range it.archetypes {
		colA, _ := columnFor[A](arch)
		colB, _ := columnFor[B](arch)
		for i, st := range arch.state {
			if st.Tombstone() {
				continue
			}
			fn(&colA.cells[i], &colB.cells[i])
		}
	}
}

func (it *Iterator2[A, B]) IterateEntity(fn func(Entity, *A, *B)) {
	for _, arch := range it.archetypes {
		colA, _ := columnFor[A](arch)
		colB, _ := columnFor[B](arch)
		for i, st := range arch.state {
			if st.Tombstone() {
				continue
			}
			fn(arch.entityAt(uint32(i)), &colA.cells[i], &colB.cells[i])
		}
	}
}

// Iterator3 is Iterator1 over three component types.
type Iterator3[A, B, C Component] struct {
	max        int
	archetypes []*Archetype
}

func NewIterator3[A, B, C Component](max int) *Iterator3[A, B, C] {
	return &Iterator3[A, B, C]{max: max}
}

func (it *Iterator3[A, B, C]) Initialize(reg *Registry) {
	mask := queryMask3[A, B, C]()
	it.archetypes = it.archetypes[:0]
	for _, arch := range reg.order {
		if arch.HasComponents(mask) {
			it.archetypes = append(it.archetypes, arch)
		}
	}
	assert.That(len(it.archetypes) <= it.max, "Iterator3 bounded fanout exceeded: %d archetypes matched, max is %d", len(it.archetypes), it.max)
}

func (it *Iterator3[A, B, C]) Iterate(fn func(*A, *B, *C)) {
	for _, arch := range it.archetypes {
		colA, _ := columnFor[A](arch)
		colB, _ := columnFor[B](arch)
		colC, _ := columnFor[C](arch)
		for i, st := range arch.state {
			if st.Tombstone() {
				continue
			}
			fn(&colA.cells[i], &colB.cells[i], &colC.cells[i])
		}
	}
}

func (it *Iterator3[A, B, C]) IterateEntity(fn func(Entity, *A, *B, *C)) {
	for _, arch := range it.archetypes {
		colA, _ := columnFor[A](arch)
		colB, _ := columnFor[B](arch)
		colC, _ := columnFor[C](arch)
		for i, st := range arch.state {
			if st.Tombstone() {
				continue
			}
			fn(arch.entityAt(uint32(i)), &colA.cells[i], &colB.cells[i], &colC.cells[i])
		}
	}
}

// Iterator4 is Iterator1 over four component types.
type Iterator4[A, B, C, D Component] struct {
	max        int
	archetypes []*Archetype
}

func NewIterator4[A, B, C, D Component](max int) *Iterator4[A, B, C, D] {
	return &Iterator4[A, B, C, D]{max: max}
}

func (it *Iterator4[A, B, C, D]) Initialize(reg *Registry) {
	mask := queryMask4[A, B, C, D]()
	it.archetypes = it.archetypes[:0]
	for _, arch := range reg.order {
		if arch.HasComponents(mask) {
			it.archetypes = append(it.archetypes, arch)
		}
	}
	assert.That(len(it.archetypes) <= it.max, "Iterator4 bounded fanout exceeded: %d archetypes matched, max is %d", len(it.archetypes), it.max)
}

func (it *Iterator4[A, B, C, D]) Iterate(fn func(*A, *B, *C, *D)) {
	for _, arch := range it.archetypes {
		colA, _ := columnFor[A](arch)
		colB, _ := columnFor[B](arch)
		colC, _ := columnFor[C](arch)
		colD, _ := columnFor[D](arch)
		for i, st := range arch.state {
			if st.Tombstone() {
				continue
			}
			fn(&colA.cells[i], &colB.cells[i], &colC.cells[i], &colD.cells[i])
		}
	}
}

func (it *Iterator4[A, B, C, D]) IterateEntity(fn func(Entity, *A, *B, *C, *D)) {
	for _, arch := range it.archetypes {
		colA, _ := columnFor[A](arch)
		colB, _ := columnFor[B](arch)
		colC, _ := columnFor[C](arch)
		colD, _ := columnFor[D](arch)
		for i, st := range arch.state {
			if st.Tombstone() {
				continue
			}
			fn(arch.entityAt(uint32(i)), &colA.cells[i], &colB.cells[i], &colC.cells[i], &colD.cells[i])
		}
	}
}
