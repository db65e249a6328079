// Package physics implements the per-atom compute kernel (§4.6): morph-mode
// smoothstep interpolation when targets are active, and wander-mode
// sinusoidal-force integration with soft boundary repulsion otherwise.
package physics

import "math"

// Vec2 is a 2D position or velocity.
type Vec2 struct{ X, Y float32 }

// Params holds the tunables from §4.6 and the design-notes number hygiene
// section; defaults mirror internal/config.Default().
type Params struct {
	Bound    float32 // wall repulsion threshold, default 0.92
	MaxVel   float32 // speed clamp, default 0.55
	Damping  float32 // velocity damping factor per step, default 0.992
	WallGain float32 // quadratic wall repulsion gain
}

// DefaultParams returns the parameter set used when the caller does not
// override any tunable.
func DefaultParams() Params {
	return Params{Bound: 0.92, MaxVel: 0.55, Damping: 0.992, WallGain: 40}
}

// goldenAngle spreads per-atom wander phases deterministically across
// [0, 2π) as index increases, avoiding visible synchrony between
// neighboring indices (the spec leaves the exact phase-derivation open;
// this is the Open Question resolution recorded in DESIGN.md).
const goldenAngle = 2.399963229728653

// smoothstep computes s = t²(3−2t), the invariant-4 interpolation curve.
func smoothstep(t float32) float32 {
	t = clampF(t, 0, 1)
	return t * t * (3 - 2*t)
}

// StepMorph implements §4.6's morph mode for one atom.
func StepMorph(source, target Vec2, morphT float32) (position, velocity Vec2) {
	t := clampF(morphT, 0, 1)
	s := smoothstep(t)
	position = Vec2{
		X: mix(source.X, target.X, s),
		Y: mix(source.Y, target.Y, s),
	}
	velocity = Vec2{
		X: (target.X - source.X) * (1 - s),
		Y: (target.Y - source.Y) * (1 - s),
	}
	return position, velocity
}

// StepWander implements §4.6's wander mode for one atom: sinusoidal force,
// soft quadratic wall repulsion, damped velocity integration, hard position
// clamp.
func StepWander(index int, position, velocity Vec2, timeSec, dt float32, p Params) (newPosition, newVelocity Vec2) {
	phase := float32(math.Mod(float64(index)*goldenAngle, 2*math.Pi))

	force := wanderForce(phase, timeSec)
	force.X += wallForce(position.X, p.Bound, p.WallGain)
	force.Y += wallForce(position.Y, p.Bound, p.WallGain)

	v := Vec2{
		X: (velocity.X + force.X*dt) * p.Damping,
		Y: (velocity.Y + force.Y*dt) * p.Damping,
	}
	v = clampSpeed(v, p.MaxVel)

	pos := Vec2{
		X: clampF(position.X+v.X*dt, -1, 1),
		Y: clampF(position.Y+v.Y*dt, -1, 1),
	}
	return pos, v
}

// wanderForce is the two-frequency sinusoidal force field: a slow,
// large-amplitude component and a faster, smaller-amplitude component, both
// offset by the atom's phase so neighboring indices diverge immediately.
func wanderForce(phase, timeSec float32) Vec2 {
	const (
		freq1, amp1 = 0.35, 0.6
		freq2, amp2 = 1.7, 0.25
	)
	t := float64(timeSec)
	ph := float64(phase)
	return Vec2{
		X: float32(amp1*math.Sin(2*math.Pi*freq1*t+ph) + amp2*math.Sin(2*math.Pi*freq2*t+ph*1.3)),
		Y: float32(amp1*math.Cos(2*math.Pi*freq1*t+ph*0.8) + amp2*math.Cos(2*math.Pi*freq2*t*0.7+ph)),
	}
}

// wallForce returns a soft quadratic repulsion along one axis when |coord|
// exceeds bound, pointing back toward the origin.
func wallForce(coord, bound, gain float32) float32 {
	mag := absF(coord)
	if mag <= bound {
		return 0
	}
	excess := mag - bound
	f := gain * excess * excess
	if coord < 0 {
		return f
	}
	return -f
}

func clampSpeed(v Vec2, maxVel float32) Vec2 {
	speed := float32(math.Hypot(float64(v.X), float64(v.Y)))
	if speed <= maxVel || speed == 0 {
		return v
	}
	scale := maxVel / speed
	return Vec2{X: v.X * scale, Y: v.Y * scale}
}

func mix(a, b, t float32) float32 { return a + (b-a)*t }

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
