// Package orchestrator implements the control state machine (§4.9): the
// Wander/Morph/Hold/Transitioning states, the goto_shape transition
// procedure, and the per-frame tick that advances morph/hold timing and steps
// the physics engine. Splat, decay and render are run by the caller.
package orchestrator

import (
	"fmt"
	"math/rand"

	"github.com/tofuswarm/tofu/internal/config"
	"github.com/tofuswarm/tofu/internal/logging"
	"github.com/tofuswarm/tofu/internal/nca"
	"github.com/tofuswarm/tofu/internal/ot"
	"github.com/tofuswarm/tofu/internal/physics"
	"github.com/tofuswarm/tofu/internal/sampler"
	"github.com/tofuswarm/tofu/internal/shapes"
)

// maxDtSec is the per-frame dt clamp from §4.9's frame procedure ("Compute
// dt (clamped, e.g., ≤ 33 ms)").
const maxDtSec = 0.033

// Phase identifies which of the three phases (Wander, Morph, Hold) the
// orchestrator is in; the Transitioning guard is tracked separately.
type Phase int

const (
	PhaseWander Phase = iota
	PhaseMorph
	PhaseHold
)

func (p Phase) String() string {
	switch p {
	case PhaseWander:
		return "wander"
	case PhaseMorph:
		return "morph"
	case PhaseHold:
		return "hold"
	default:
		return "unknown"
	}
}

// Orchestrator owns the atom position/velocity/source/target arrays (CPU
// mirror — a GPU-backed driver uploads the same data via
// bufreg.Registry.UploadAtoms) and the control state machine. It is not
// safe for concurrent use: per §5, all host mutation happens from a single
// frame-loop thread.
type Orchestrator struct {
	cfg   config.Config
	shape *shapes.Library
	nca   nca.Engine
	rng   *rand.Rand

	position []physics.Vec2
	velocity []physics.Vec2
	source   []physics.Vec2
	target   []physics.Vec2

	physParams physics.Params

	hasTargets     bool
	morphT         float32
	hold           float32
	timeSec        float32
	transitioning  bool
	userControlled bool

	cycle      []string
	cycleIndex int

	status string // resolved canonical shape name, for the HUD
	phase  string // HUD phase label

	lastTickMs   float64
	haveLastTick bool

	fps          float64
	lastFPSMs    float64
	haveLastFPS  bool
}

// New constructs an Orchestrator seeded with N atoms in wander mode,
// positioned uniformly at random inside the wander bound.
func New(cfg config.Config, shapeLib *shapes.Library, engine nca.Engine, seed int64) *Orchestrator {
	rng := rand.New(rand.NewSource(seed))
	o := &Orchestrator{
		cfg:        cfg,
		shape:      shapeLib,
		nca:        engine,
		rng:        rng,
		position:   make([]physics.Vec2, cfg.N),
		velocity:   make([]physics.Vec2, cfg.N),
		source:     make([]physics.Vec2, cfg.N),
		target:     make([]physics.Vec2, cfg.N),
		physParams: physics.DefaultParams(),
		cycle:      shapes.Names(),
		status:     shapes.DefaultCanonical,
		phase:      PhaseWander.String(),
	}
	o.physParams.Bound = float32(cfg.Bound)
	o.physParams.MaxVel = float32(cfg.MaxVel)

	for i := range o.position {
		o.position[i] = physics.Vec2{
			X: float32(rng.Float64()*2 - 1) * float32(cfg.Bound),
			Y: float32(rng.Float64()*2 - 1) * float32(cfg.Bound),
		}
	}
	return o
}

// Status returns the HUD status label: the last resolved canonical shape
// name.
func (o *Orchestrator) Status() string { return o.status }

// Phase returns the HUD phase label (§4.9: "nca · growing", "ot · k-means",
// "morph NN%", "hold X.Xs").
func (o *Orchestrator) Phase() string { return o.phase }

// FPS returns the most recent frame-rate estimate from TickFPS.
func (o *Orchestrator) FPS() float64 { return o.fps }

// Positions returns the current CPU-mirrored atom positions, read-only.
func (o *Orchestrator) Positions() []physics.Vec2 { return o.position }

// Velocities returns the current CPU-mirrored atom velocities, read-only.
func (o *Orchestrator) Velocities() []physics.Vec2 { return o.velocity }

// Submit implements the control-interface `submit(text)` (§6): it resolves
// text and initiates goto_shape. On success it sets the user-controlled
// flag (suppressing auto-cycle) and returns the resolved canonical name.
func (o *Orchestrator) Submit(text string) (canonical string, ok bool) {
	canonical, ok = o.gotoShape(text)
	if ok {
		o.userControlled = true
	}
	return canonical, ok
}

// Clear implements the control-interface `clear()` (§6): unsets the
// user-controlled flag and immediately triggers an auto-cycle advance.
func (o *Orchestrator) Clear() {
	o.userControlled = false
	o.advanceCycle()
}

// TickFPS implements the control-interface `tick_fps(now_ms)` (§6): an
// internal HUD frame-rate counter update, independent of the simulation
// tick.
func (o *Orchestrator) TickFPS(nowMs float64) {
	if o.haveLastFPS {
		dtMs := nowMs - o.lastFPSMs
		if dtMs > 0 {
			instant := 1000.0 / dtMs
			// Exponential moving average smooths frame-to-frame jitter.
			const alpha = 0.1
			o.fps = o.fps*(1-alpha) + instant*alpha
		}
	} else {
		o.haveLastFPS = true
	}
	o.lastFPSMs = nowMs
}

// Tick implements the frame-tick interface (§6, §4.9 frame procedure):
// computes a clamped dt from now_ms, advances morph_t/hold, and steps
// every atom's physics in place.
func (o *Orchestrator) Tick(nowMs float64) {
	dt := o.computeDt(nowMs)
	o.timeSec += dt

	if o.hasTargets {
		if o.morphT < 1 {
			o.morphT = clampF(o.morphT+dt/float32(o.cfg.MorphDuration), 0, 1)
			o.phase = fmt.Sprintf("morph %d%%", int(o.morphT*100))
			if o.morphT >= 1 {
				o.hold = 0
				o.phase = "hold 0.0s"
			}
		} else {
			o.hold += dt
			o.phase = fmt.Sprintf("hold %.1fs", o.hold)
			if !o.userControlled && float64(o.hold) >= o.cfg.HoldDuration && !o.transitioning {
				o.advanceCycle()
			}
		}
	}

	for i := range o.position {
		if o.hasTargets {
			o.position[i], o.velocity[i] = physics.StepMorph(o.source[i], o.target[i], o.morphT)
		} else {
			o.position[i], o.velocity[i] = physics.StepWander(i, o.position[i], o.velocity[i], o.timeSec, dt, o.physParams)
		}
	}
}

func (o *Orchestrator) computeDt(nowMs float64) float32 {
	var dtMs float64
	if o.haveLastTick {
		dtMs = nowMs - o.lastTickMs
	}
	o.lastTickMs = nowMs
	o.haveLastTick = true

	dtSec := float32(dtMs / 1000)
	return clampF(dtSec, 0, maxDtSec)
}

// advanceCycle moves to the next shape in the registry's name cycle and
// initiates a transition to it, unless a transition is already in flight.
func (o *Orchestrator) advanceCycle() {
	if len(o.cycle) == 0 || o.transitioning {
		return
	}
	name := o.cycle[o.cycleIndex%len(o.cycle)]
	o.cycleIndex++
	o.gotoShape(name)
}

// gotoShape implements the transition procedure (§4.9):
//  1. Reject if a transition is already in flight.
//  2. Resolve name → canonical → goal grid.
//  3. Run NCA to produce an organic alpha grid.
//  4. Sample N raw target positions from alpha.
//  5. Run OT to produce N assigned target positions.
//  6. Copy current target into source; copy assigned into target.
//  7. Reset morph_t, set has_targets, reset hold; update HUD.
//  8. Clear the transitioning flag.
func (o *Orchestrator) gotoShape(text string) (canonical string, ok bool) {
	if o.transitioning {
		return "", false
	}
	o.transitioning = true
	defer func() { o.transitioning = false }()

	canonical = shapes.Resolve(text)
	o.phase = "nca · growing"
	goal := o.shape.Generate(canonical)

	alpha := o.nca.Run(nca.Grid{W: goal.W, H: goal.H, Data: goal.Data})

	raw := sampler.Sample(sampler.DensityGrid{W: alpha.W, H: alpha.H, Data: alpha.Data}, o.cfg.N, o.rng)

	o.phase = "ot · k-means"
	sourceCloud := make([]ot.Point, o.cfg.N)
	targetCloud := make([]ot.Point, o.cfg.N)
	for i, p := range o.position {
		sourceCloud[i] = ot.Point{X: p.X, Y: p.Y}
	}
	for i, p := range raw {
		targetCloud[i] = ot.Point{X: p.X, Y: p.Y}
	}
	assigned := ot.Assign(sourceCloud, targetCloud, o.cfg.K, o.cfg.ITER)

	if o.hasTargets {
		copy(o.source, o.target)
	} else {
		// First-ever transition: there is no prior target to morph from, so
		// the source is the swarm's current wander scatter — the "initial
		// chaotic scatter... before any backend frame" case.
		copy(o.source, o.position)
	}
	for i, p := range assigned {
		o.target[i] = physics.Vec2{X: p.X, Y: p.Y}
	}

	o.morphT = 0
	o.hasTargets = true
	o.hold = 0
	o.status = canonical
	o.phase = "morph 0%"

	logging.Logger().Info("orchestrator: transition started", "shape", canonical)
	return canonical, true
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
