package ecs

import "github.com/rotisserie/eris"

// Sentinel error kinds. Call sites wrap these with eris.Wrap/Wrapf to attach
// a stack and context without losing the identity errors.Is needs.
var (
	ErrDuplicateArchetype            = eris.New("ecs: archetype with this component mask is already registered")
	ErrDoubleId                      = eris.New("ecs: archetype id is already registered")
	ErrUnregisteredArchetype         = eris.New("ecs: no archetype registered for this lookup")
	ErrInvalidEntity                 = eris.New("ecs: entity does not belong to this archetype")
	ErrInvalidRequestedIndex         = eris.New("ecs: requested slot index is neither free nor the next tail slot")
	ErrInvalidDataStream             = eris.New("ecs: data stream is malformed")
	ErrBadStreamVersion              = eris.New("ecs: stream version is newer than supported")
	ErrInvalidPodDataVersion         = eris.New("ecs: stored pod component version does not match the registered version")
	ErrInvalidComponentConfiguration = eris.New("ecs: component configuration is invalid")
	ErrMissingRequiredComponents     = eris.New("ecs: archetype is missing a component's required components")
	ErrTooLargeComponent             = eris.New("ecs: component payload exceeds the maximum representable size")
	ErrCannotSkipComponent           = eris.New("ecs: cannot skip unknown component column in a stream older than version 2")
)
