package ecs

// A query is a set of requested component types dispatched across every
// archetype whose mask is a superset of the query mask. Go has no variadic
// generics, so each arity gets its own hand-written function, done here for
// arities 1 through 4, which covers the overwhelming majority of real
// queries.
//
// Within an archetype, slots are visited in ascending index, skipping
// tombstones; archetypes are visited in registration order.

// GetComponent resolves component type T on a live entity, returning a
// pointer into its column cell and true, or (nil, false) if e is empty,
// stale, or its archetype carries no T column.
func GetComponent[T Component](e Entity) (*T, bool) {
	if e.Empty() || !e.archetype.validateID(e.id) {
		return nil, false
	}
	col, ok := columnFor[T](e.archetype)
	if !ok {
		return nil, false
	}
	return &col.cells[e.id.Index()], true
}

func columnFor[T Component](a *Archetype) (*column[T], bool) {
	var zero T
	col := a.columnByMaskBit(zero.Mask())
	if col == nil {
		return nil, false
	}
	typed, ok := col.(*column[T])
	return typed, ok
}

func queryMask1[A Component]() uint64 {
	var a A
	return a.Mask()
}

func queryMask2[A, B Component]() uint64 {
	var a A
	var b B
	return a.Mask() | b.Mask()
}

func queryMask3[A, B, C Component]() uint64 {
	var a A
	var b B
	var c C
	return a.Mask() | b.Mask() | c.Mask()
}

func queryMask4[A, B, C, D Component]() uint64 {
	var a A
	var b B
	var c C
	var d D
	return a.Mask() | b.Mask() | c.Mask() | d.Mask()
}

// ForEach1 invokes fn with a pointer to component A for every live slot of
// every archetype whose mask contains A's mask.
func ForEach1[A Component](reg *Registry, fn func(*A)) {
	mask := queryMask1[A]()
	for _, arch := range reg.order {
		if !arch.HasComponents(mask) {
			continue
		}
		colA, _ := columnFor[A](arch)
		for i, st := range arch.state {
			if st.Tombstone() {
				continue
			}
			fn(&colA.cells[i])
		}
	}
}

// ForEachWithEntity1 is ForEach1 with the Entity handle passed first.
func ForEachWithEntity1[A Component](reg *Registry, fn func(Entity, *A)) {
	mask := queryMask1[A]()
	for _, arch := range reg.order {
		if !arch.HasComponents(mask) {
			continue
		}
		colA, _ := columnFor[A](arch)
		for i, st := range arch.state {
			if st.Tombstone() {
				continue
			}
			fn(arch.entityAt(uint32(i)), &colA.cells[i])
		}
	}
}

// ForEach2 invokes fn with pointers to components A and B for every live
// slot of every archetype whose mask contains both A's and B's masks.
func ForEach2[A, B Component](reg *Registry, fn func(*A, *B)) {
	mask := queryMask2[A, B]()
	for _, arch := range reg.order {
		if !arch.HasComponents(mask) {
			continue
		}
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

// ForEachWithEntity2 is ForEach2 with the Entity handle passed first.
func ForEachWithEntity2[A, B Component](reg *Registry, fn func(Entity, *A, *B)) {
	mask := queryMask2[A, B]()
	for _, arch := range reg.order {
		if !arch.HasComponents(mask) {
			continue
		}
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

// ForEach3 invokes fn with pointers to components A, B and C for every live
// slot of every archetype whose mask contains all three masks.
func ForEach3[A, B, C Component](reg *Registry, fn func(*A, *B, *C)) {
	mask := queryMask3[A, B, C]()
	for _, arch := range reg.order {
		if !arch.HasComponents(mask) {
			continue
		}
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

// ForEachWithEntity3 is ForEach3 with the Entity handle passed first.
func ForEachWithEntity3[A, B, C Component](reg *Registry, fn func(Entity, *A, *B, *C)) {
	mask := queryMask3[A, B, C]()
	for _, arch := range reg.order {
		if !arch.HasComponents(mask) {
			continue
		}
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

// ForEach4 invokes fn with pointers to components A, B, C and D for every
// live slot of every archetype whose mask contains all four masks.
func ForEach4[A, B, C, D Component](reg *Registry, fn func(*A, *B, *C, *D)) {
	mask := queryMask4[A, B, C, D]()
	for _, arch := range reg.order {
		if !arch.HasComponents(mask) {
			continue
		}
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

// ForEachWithEntity4 is ForEach4 with the Entity handle passed first.
func ForEachWithEntity4[A, B, C, D Component](reg *Registry, fn func(Entity, *A, *B, *C, *D)) {
	mask := queryMask4[A, B, C, D]()
	for _, arch := range reg.order {
		if !arch.HasComponents(mask) {
			continue
		}
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

// Iterators1 is the raw, per-archetype bulk hook: instead of a callback per
// live slot, fn is invoked once per matching archetype with the full state
// slice and the full backing cell slice for A, both indexed 0..count-1 over
// every slot (live and tombstoned). This hands the caller the same begin
// pointers a hand-rolled SIMD or cache-blocked loop would need, at the cost
// of making it the caller's job to skip tombstoned slots via states[i]. Only
// called for archetypes with at least one slot; empty archetypes are
// skipped.
func Iterators1[A Component](reg *Registry, fn func(count int, states []EntityState, a []A, arch *Archetype)) {
	mask := queryMask1[A]()
	for _, arch := range reg.order {
		if !arch.HasComponents(mask) || len(arch.state) == 0 {
			continue
		}
		colA, _ := columnFor[A](arch)
		fn(len(arch.state), arch.state, colA.cells, arch)
	}
}

// Iterators2 is Iterators1 over components A and B.
func Iterators2[A, B Component](reg *Registry, fn func(count int, states []EntityState, a []A, b []B, arch *Archetype)) {
	mask := queryMask2[A, B]()
	for _, arch := range reg.order {
		if !arch.HasComponents(mask) || len(arch.state) == 0 {
			continue
		}
		colA, _ := columnFor[A](arch)
		colB, _ := columnFor[B](arch)
		fn(len(arch.state), arch.state, colA.cells, colB.cells, arch)
	}
}

// Iterators3 is Iterators1 over components A, B and C.
func Iterators3[A, B, C Component](reg *Registry, fn func(count int, states []EntityState, a []A, b []B, c []C, arch *Archetype)) {
	mask := queryMask3[A, B, C]()
	for _, arch := range reg.order {
		if !arch.HasComponents(mask) || len(arch.state) == 0 {
			continue
		}
		colA, _ := columnFor[A](arch)
		colB, _ := columnFor[B](arch)
		colC, _ := columnFor[C](arch)
		fn(len(arch.state), arch.state, colA.cells, colB.cells, colC.cells, arch)
	}
}

// Iterators4 is Iterators1 over components A, B, C and D.
func Iterators4[A, B, C, D Component](reg *Registry, fn func(count int, states []EntityState, a []A, b []B, c []C, d []D, arch *Archetype)) {
	mask := queryMask4[A, B, C, D]()
	for _, arch := range reg.order {
		if !arch.HasComponents(mask) || len(arch.state) == 0 {
			continue
		}
		colA, _ := columnFor[A](arch)
		colB, _ := columnFor[B](arch)
		colC, _ := columnFor[C](arch)
		colD, _ := columnFor[D](arch)
		fn(len(arch.state), arch.state, colA.cells, colB.cells, colC.cells, colD.cells, arch)
	}
}
