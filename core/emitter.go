package core

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/signalsfoundry/uwb-floorsim/internal/logging"
	"github.com/signalsfoundry/uwb-floorsim/model"
)

// EmitterConfig holds the ranging cadence constants. Lifetime is tuned
// longer than Interval so several bursts are visible concurrently.
type EmitterConfig struct {
	Interval time.Duration // time between pulse bursts
	Lifetime time.Duration // how long each pulse stays visible
}

// DefaultEmitterConfig returns the reference tuning.
func DefaultEmitterConfig() EmitterConfig {
	return EmitterConfig{
		Interval: 600 * time.Millisecond,
		Lifetime: 2600 * time.Millisecond,
	}
}

func (c EmitterConfig) normalized() EmitterConfig {
	def := DefaultEmitterConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.Lifetime <= 0 {
		c.Lifetime = def.Lifetime
	}
	return c
}

// TagReader is the read-only view of the tag the emitter observes. The
// emitter never influences tag motion.
type TagReader interface {
	TagState() model.TagState
}

// EmitterMetricsRecorder receives pulse counters; nil is allowed.
type EmitterMetricsRecorder interface {
	AddPulsesEmitted(n int)
	SetActivePulses(n int)
}

// RangingEmitter produces the visual illusion of continuous anchor-to-tag
// ranging. On a fixed cadence it snapshots the tag's position and emits
// one pulse per anchor in the tag's current room; each pulse then expires
// independently after a fixed lifetime.
type RangingEmitter struct {
	mu       sync.Mutex
	cfg      EmitterConfig
	resolver *GeometryResolver
	tag      TagReader
	log      logging.Logger
	metrics  EmitterMetricsRecorder

	pulses   []model.Pulse
	lastEmit time.Time
}

// NewRangingEmitter constructs an emitter. metrics may be nil.
func NewRangingEmitter(resolver *GeometryResolver, tag TagReader, cfg EmitterConfig, log logging.Logger, metrics EmitterMetricsRecorder) *RangingEmitter {
	if log == nil {
		log = logging.Noop()
	}
	return &RangingEmitter{
		cfg:      cfg.normalized(),
		resolver: resolver,
		tag:      tag,
		log:      log,
		metrics:  metrics,
	}
}

// Advance expires old pulses and, when the emission interval has elapsed,
// emits a new burst. The first Advance emits immediately.
func (e *RangingEmitter) Advance(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.expireLocked(now)

	if !e.lastEmit.IsZero() && now.Sub(e.lastEmit) < e.cfg.Interval {
		return
	}
	e.lastEmit = now
	e.emitLocked(now)
}

func (e *RangingEmitter) expireLocked(now time.Time) {
	nowMs := now.UnixMilli()
	kept := e.pulses[:0]
	for _, p := range e.pulses {
		if p.ExpiresAt > nowMs {
			kept = append(kept, p)
		}
	}
	e.pulses = kept
	if e.metrics != nil {
		e.metrics.SetActivePulses(len(e.pulses))
	}
}

// emitLocked snapshots the tag and creates one pulse per anchor in its
// current room. A room with no measurable anchors yields no pulses, which
// is the expected state before first layout resolution.
func (e *RangingEmitter) emitLocked(now time.Time) {
	tag := e.tag.TagState()
	anchors := e.resolver.ResolveAnchors(tag.Room)
	if len(anchors) == 0 {
		return
	}

	nowMs := now.UnixMilli()
	expires := now.Add(e.cfg.Lifetime).UnixMilli()
	for _, anchor := range anchors {
		e.pulses = append(e.pulses, model.Pulse{
			ID:        uuid.NewString(),
			AnchorID:  anchor.ID,
			Room:      tag.Room,
			From:      anchor.Position,
			To:        tag.Position,
			EmittedAt: nowMs,
			ExpiresAt: expires,
		})
	}
	if e.metrics != nil {
		e.metrics.AddPulsesEmitted(len(anchors))
		e.metrics.SetActivePulses(len(e.pulses))
	}
}

// Pulses returns a copy of the live pulses in emission order.
func (e *RangingEmitter) Pulses() []model.Pulse {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Pulse, len(e.pulses))
	copy(out, e.pulses)
	return out
}

// Rays derives the instantaneous distance and bearing from each anchor in
// the tag's current room to the tag. Stateless per-frame recomputation,
// nothing is persisted.
func (e *RangingEmitter) Rays() []model.RangingRay {
	tag := e.tag.TagState()
	anchors := e.resolver.ResolveAnchors(tag.Room)
	if len(anchors) == 0 {
		return nil
	}
	rays := make([]model.RangingRay, 0, len(anchors))
	for _, anchor := range anchors {
		rays = append(rays, model.RangingRay{
			AnchorID:   anchor.ID,
			Room:       anchor.Room,
			From:       anchor.Position,
			Distance:   Distance(anchor.Position, tag.Position),
			BearingDeg: BearingDegrees(anchor.Position, tag.Position),
		})
	}
	return rays
}
