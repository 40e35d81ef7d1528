package ecs

import "github.com/rs/zerolog"

// archetypeConfig accumulates the settings ArchetypeOptions mutate before an
// Archetype is built. Defaults are reasonable placeholder thresholds: tune
// them for your workload.
type archetypeConfig struct {
	flags                 ArchetypeFlags
	bounded               bool
	capacity              int
	autoCompressEveryN    uint64
	autoCompressFreeRatio float64
	autoReserveNLeft      int
	autoReserveFullRatio  float64
}

func defaultArchetypeConfig() archetypeConfig {
	return archetypeConfig{
		capacity:              16,
		autoCompressEveryN:    10000,
		autoCompressFreeRatio: 0.25,
		autoReserveNLeft:      1,
		autoReserveFullRatio:  0.75,
	}
}

// ArchetypeOption configures an Archetype at RegisterArchetype time using
// the standard functional-options shape.
type ArchetypeOption func(*archetypeConfig)

// WithFlags sets the archetype's behavior flags (see ArchetypeFlag*).
func WithFlags(flags ArchetypeFlags) ArchetypeOption {
	return func(c *archetypeConfig) { c.flags |= flags }
}

// WithBoundedCapacity selects the bounded(N) storage discipline with a fixed
// inline capacity. Reserve becomes a no-op and Create refuses past N.
func WithBoundedCapacity(n int) ArchetypeOption {
	return func(c *archetypeConfig) {
		c.bounded = true
		c.capacity = n
	}
}

// WithGrowableCapacity selects the growable storage discipline with an
// initial capacity; Reserve may reallocate, Append never does.
func WithGrowableCapacity(initial int) ArchetypeOption {
	return func(c *archetypeConfig) {
		c.bounded = false
		c.capacity = initial
	}
}

// WithAutoCompress enables the auto-compress-every-N-calls and/or
// auto-compress-on-free-ratio maintenance policies. Pass 0 for a threshold
// to leave that particular policy disabled.
func WithAutoCompress(everyNCalls uint64, freeRatio float64) ArchetypeOption {
	return func(c *archetypeConfig) {
		if everyNCalls > 0 {
			c.flags |= ArchetypeFlagAutoCompressNCalls
			c.autoCompressEveryN = everyNCalls
		}
		if freeRatio > 0 {
			c.flags |= ArchetypeFlagAutoCompressFreeThreshold
			c.autoCompressFreeRatio = freeRatio
		}
	}
}

// WithAutoReserve enables the auto-reserve-when-N-left and/or
// auto-reserve-on-fill-ratio maintenance policies.
func WithAutoReserve(nLeft int, fillRatio float64) ArchetypeOption {
	return func(c *archetypeConfig) {
		if nLeft > 0 {
			c.flags |= ArchetypeFlagAutoReserveNLeft
			c.autoReserveNLeft = nLeft
		}
		if fillRatio > 0 {
			c.flags |= ArchetypeFlagAutoReserveFullThreshold
			c.autoReserveFullRatio = fillRatio
		}
	}
}

// registryConfig accumulates Registry-level Options.
type registryConfig struct {
	logger   zerolog.Logger
	listener Listener
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{logger: zerolog.Nop()}
}

// Option configures a Registry at NewRegistry time.
type Option func(*registryConfig)

// WithLogger injects a zerolog.Logger the registry uses for warn/debug
// diagnostics (unknown archetype on load, compression activity, ...). The
// registry logs nowhere if this option is omitted.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *registryConfig) { c.logger = logger }
}

// WithListener attaches a Listener that receives serialization events and
// archetype-registration notifications.
func WithListener(l Listener) Option {
	return func(c *registryConfig) { c.listener = l }
}
