package ecs_test

import (
	"testing"

	"github.com/rivenforge/ecs"
	"github.com/rivenforge/ecs/internal/testutils"
)

type counter struct{ n int }

func (c *counter) inc() { c.n++ }

func TestObjectCallInvokesBoundMethod(t *testing.T) {
	c := &counter{}
	call := ecs.NewObjectCall(c, (*counter).inc)
	call.Execute()
	call.Execute()
	if c.n != 2 {
		t.Errorf("counter.n = %d, want 2", c.n)
	}
}

func TestObjectCallWithNilObjectIsANoOp(t *testing.T) {
	call := ecs.NewObjectCall[counter](nil, (*counter).inc)
	call.Execute() // must not panic
}

func TestEntityCallResolvesComponentEachExecute(t *testing.T) {
	reg := ecs.NewRegistry()
	a, _ := reg.RegisterArchetype(1, "healthOnly", []ecs.ColumnBuilder{
		ecs.ForComponent[testutils.Health](testutils.Health{}),
	})
	e, _ := a.CreateEntity()

	call := ecs.NewEntityCall(e, func(h *testutils.Health) { h.Value++ })
	call.Execute()
	call.Execute()

	hp, _ := ecs.GetComponent[testutils.Health](e)
	if hp.Value != 2 {
		t.Errorf("Health.Value = %d, want 2", hp.Value)
	}
}

func TestEntityCallSelfInvalidatesAfterRemoval(t *testing.T) {
	reg := ecs.NewRegistry()
	a, _ := reg.RegisterArchetype(1, "healthOnly", []ecs.ColumnBuilder{
		ecs.ForComponent[testutils.Health](testutils.Health{}),
	})
	e, _ := a.CreateEntity()
	call := ecs.NewEntityCall(e, func(h *testutils.Health) { h.Value++ })

	_ = a.Remove(e.ID())

	call.Execute() // resolution fails, call self-invalidates
	call.Execute() // must stay a silent no-op, not panic or resolve a reused slot

	reused, _ := a.CreateEntity()
	hp, _ := ecs.GetComponent[testutils.Health](reused)
	if hp.Value != 0 {
		t.Errorf("a self-invalidated EntityCall must not resolve against a slot reused after its entity died; got Value=%d", hp.Value)
	}
}

func TestCallListExecutesInInsertionOrderAndSupportsRemove(t *testing.T) {
	cl := ecs.NewCallList()
	var order []int
	makeCall := func(n int) ecs.Call {
		return ecs.NewObjectCall(&n, func(p *int) { order = append(order, *p) })
	}
	c1, c2, c3 := makeCall(1), makeCall(2), makeCall(3)
	cl.Add(c1)
	cl.Add(c2)
	cl.Add(c3)

	cl.Remove(c2)
	if cl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cl.Len())
	}

	cl.Execute()
	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Errorf("execution order = %v, want [1 3]", order)
	}
}
