package ecs

// Call is a uniform, type-erased invocation target (original include/Call.hh).
// C++ built this on member function pointers and template-erased wrappers;
// Go has neither, so the callable itself is just a closure and Call exists
// only to give CallList a common element type to hold.
type Call interface {
	Execute()
}

// ObjectCall binds a method to a specific receiver, the way the original's
// ObjectCall<Return, Object, Args...> binds an object pointer and a member
// function pointer. T is the receiver type; method is invoked with object on
// every Execute, unless object is nil.
type ObjectCall[T any] struct {
	object *T
	method func(*T)
}

// NewObjectCall builds a Call that invokes method(object) on Execute.
func NewObjectCall[T any](object *T, method func(*T)) *ObjectCall[T] {
	return &ObjectCall[T]{object: object, method: method}
}

func (c *ObjectCall[T]) Execute() {
	if c.object != nil && c.method != nil {
		c.method(c.object)
	}
}

// EntityCall resolves component T from an Entity freshly on every Execute,
// the way the original's EntityCall<Return, Component, Args...> calls
// entity.get<Component>() before every invocation. If resolution fails once
// -- the entity was removed, or never had T to begin with -- the call
// permanently self-invalidates by clearing its entity to EmptyEntity, so it
// becomes a silent no-op on every subsequent Execute instead of repeatedly
// failing to resolve.
type EntityCall[T Component] struct {
	entity Entity
	method func(*T)
}

// NewEntityCall builds a Call that resolves T on entity and invokes
// method(comp) on every Execute, while T remains resolvable.
func NewEntityCall[T Component](entity Entity, method func(*T)) *EntityCall[T] {
	return &EntityCall[T]{entity: entity, method: method}
}

func (c *EntityCall[T]) Execute() {
	if c.method == nil {
		return
	}
	comp, ok := GetComponent[T](c.entity)
	if !ok {
		c.entity = EmptyEntity
		return
	}
	c.method(comp)
}

// CallList holds an ordered set of Calls and executes them all in insertion
// order (original include/Call.hh CallList<PtrType, Args...>). Unlike the
// original, which parameterizes over a smart-pointer type, Go's garbage
// collector makes that parameter unnecessary: CallList just holds the Call
// interface values directly.
type CallList struct {
	calls []Call
}

// NewCallList constructs an empty CallList.
func NewCallList() *CallList { return &CallList{} }

// Add appends c to the end of the list.
func (cl *CallList) Add(c Call) {
	cl.calls = append(cl.calls, c)
}

// Remove deletes the first occurrence of c from the list, if present.
func (cl *CallList) Remove(c Call) {
	for i, existing := range cl.calls {
		if existing == c {
			cl.calls = append(cl.calls[:i], cl.calls[i+1:]...)
			return
		}
	}
}

// Len reports how many calls are currently registered.
func (cl *CallList) Len() int { return len(cl.calls) }

// Execute invokes every registered call in insertion order.
func (cl *CallList) Execute() {
	for _, c := range cl.calls {
		c.Execute()
	}
}
