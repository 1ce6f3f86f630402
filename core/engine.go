package core

import (
	"math/rand"
	"sync"
	"time"

	"github.com/signalsfoundry/uwb-floorsim/internal/logging"
	"github.com/signalsfoundry/uwb-floorsim/model"
)

// EngineConfig bundles the motion and ranging tuning.
type EngineConfig struct {
	Scheduler SchedulerConfig
	Emitter   EmitterConfig
}

// EngineMetricsRecorder aggregates the per-component recorders plus
// engine-level observations. Implemented by the observability collector.
type EngineMetricsRecorder interface {
	SchedulerMetricsRecorder
	EmitterMetricsRecorder
	ObserveFrameDuration(seconds float64)
	SetLogEntries(n int)
}

// SimulationEngine wires the geometry resolver, path scheduler, ranging
// emitter, and event log into one advanceable unit. A single Advance call
// is one simulation frame; whoever owns the tick loop owns all mutation.
//
// Advance, Snapshot, and Resize share one engine-level mutex so a snapshot
// is always a consistent view of a single frame, never a mix of component
// states from two frames.
type SimulationEngine struct {
	mu sync.Mutex

	Resolver  *GeometryResolver
	Scheduler *PathScheduler
	Emitter   *RangingEmitter
	Events    *EventLog

	log           logging.Logger
	metrics       EngineMetricsRecorder
	tickListeners []func(time.Time)
}

// EngineOption customises engine construction.
type EngineOption func(*engineOptions)

type engineOptions struct {
	metrics EngineMetricsRecorder
	rng     *rand.Rand
	clock   func() time.Time
}

// WithEngineMetrics attaches a metrics recorder to all components.
func WithEngineMetrics(m EngineMetricsRecorder) EngineOption {
	return func(o *engineOptions) {
		o.metrics = m
	}
}

// WithEngineRand injects a deterministic random source for tests.
func WithEngineRand(rng *rand.Rand) EngineOption {
	return func(o *engineOptions) {
		o.rng = rng
	}
}

// WithEngineClock overrides the wall clock used for log timestamps.
func WithEngineClock(clock func() time.Time) EngineOption {
	return func(o *engineOptions) {
		o.clock = clock
	}
}

// NewSimulationEngine builds the full component stack over a measurable
// surface and resolves the initial room layouts.
func NewSimulationEngine(surfaces SurfaceMeasurer, roomIDs []model.RoomID, path []model.RoomID, cfg EngineConfig, log logging.Logger, opts ...EngineOption) (*SimulationEngine, error) {
	if log == nil {
		log = logging.Noop()
	}
	var options engineOptions
	for _, opt := range opts {
		opt(&options)
	}

	resolver := NewGeometryResolver(surfaces, roomIDs, log)
	resolver.ResolveRoomLayouts()

	events := NewEventLog(options.clock)

	schedOpts := []SchedulerOption{}
	if options.rng != nil {
		schedOpts = append(schedOpts, WithRand(options.rng))
	}
	if options.metrics != nil {
		schedOpts = append(schedOpts, WithSchedulerMetrics(options.metrics))
	}
	scheduler, err := NewPathScheduler(resolver, path, events, cfg.Scheduler, log, schedOpts...)
	if err != nil {
		return nil, err
	}

	var emitterMetrics EmitterMetricsRecorder
	if options.metrics != nil {
		emitterMetrics = options.metrics
	}
	emitter := NewRangingEmitter(resolver, scheduler, cfg.Emitter, log, emitterMetrics)

	return &SimulationEngine{
		Resolver:  resolver,
		Scheduler: scheduler,
		Emitter:   emitter,
		Events:    events,
		log:       log,
		metrics:   options.metrics,
	}, nil
}

// RegisterTickListener adds a callback invoked after every frame.
func (se *SimulationEngine) RegisterTickListener(fn func(time.Time)) {
	se.tickListeners = append(se.tickListeners, fn)
}

// Advance runs one simulation frame at the given instant: scheduler first
// (it owns the tag), then the emitter (it reads whatever the tag now is).
func (se *SimulationEngine) Advance(now time.Time) {
	se.mu.Lock()
	defer se.mu.Unlock()

	start := time.Now()

	se.Scheduler.Advance(now)
	se.Emitter.Advance(now)

	if se.metrics != nil {
		se.metrics.SetLogEntries(se.Events.Len())
		se.metrics.ObserveFrameDuration(time.Since(start).Seconds())
	}

	for _, fn := range se.tickListeners {
		fn(now)
	}
}

// Resize re-resolves all room layouts against the current surfaces. Call
// whenever the host reports that the container's size may have changed.
func (se *SimulationEngine) Resize() {
	se.mu.Lock()
	defer se.mu.Unlock()
	se.Resolver.ResolveRoomLayouts()
}

// SimSnapshot is a point-in-time view of everything a renderer needs.
// Slices are copies; callers may hold them across frames.
type SimSnapshot struct {
	Rooms   []model.RoomLayout  `json:"rooms"`
	Anchors []model.AnchorPoint `json:"anchors"`
	Tag     model.TagState      `json:"tag"`
	Phase   string              `json:"phase"`
	Pulses  []model.Pulse       `json:"pulses"`
	Rays    []model.RangingRay  `json:"rays"`
	Events  []model.LogEntry    `json:"events"`
}

// Snapshot assembles the renderer view. Rooms and anchors come back in
// declaration order; events oldest-first. The whole read happens under the
// engine mutex, so no frame can advance between the tag read and the ray
// computation.
func (se *SimulationEngine) Snapshot() SimSnapshot {
	se.mu.Lock()
	defer se.mu.Unlock()

	layouts := se.Resolver.Layouts()
	rooms := make([]model.RoomLayout, 0, len(layouts))
	anchors := make([]model.AnchorPoint, 0, len(layouts)*4)
	for _, id := range se.Resolver.RoomIDs() {
		layout, ok := layouts[id]
		if !ok {
			continue
		}
		rooms = append(rooms, layout)
		anchors = append(anchors, se.Resolver.ResolveAnchors(id)...)
	}

	return SimSnapshot{
		Rooms:   rooms,
		Anchors: anchors,
		Tag:     se.Scheduler.TagState(),
		Phase:   se.Scheduler.Phase().String(),
		Pulses:  se.Emitter.Pulses(),
		Rays:    se.Emitter.Rays(),
		Events:  se.Events.Entries(),
	}
}
