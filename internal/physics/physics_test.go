package physics

import (
	"math"
	"testing"
)

// Invariant 4: at morph_t=0, position==source; at morph_t=1, position==target;
// the displacement curve is exactly s=t^2(3-2t).
func TestStepMorphEndpoints(t *testing.T) {
	source := Vec2{X: 0.1, Y: -0.4}
	target := Vec2{X: -0.7, Y: 0.9}

	pos, _ := StepMorph(source, target, 0)
	if pos != source {
		t.Fatalf("morph_t=0: got %v, want source %v", pos, source)
	}
	pos, _ = StepMorph(source, target, 1)
	if pos != target {
		t.Fatalf("morph_t=1: got %v, want target %v", pos, target)
	}
}

func TestSmoothstepMatchesFormula(t *testing.T) {
	for _, tt := range []float32{0, 0.25, 0.5, 0.75, 1} {
		got := smoothstep(tt)
		want := tt * tt * (3 - 2*tt)
		if absF(got-want) > 1e-6 {
			t.Fatalf("smoothstep(%v) = %v, want %v", tt, got, want)
		}
	}
}

func TestStepMorphVelocityVanishesAtArrival(t *testing.T) {
	_, vel := StepMorph(Vec2{X: 0, Y: 0}, Vec2{X: 1, Y: 1}, 1)
	if vel.X != 0 || vel.Y != 0 {
		t.Fatalf("velocity at morph_t=1 should be zero, got %v", vel)
	}
}

// Invariant 1: position in [-1,1]^2 always, even after many wander steps.
// Scenario S1: over many frames, speed never exceeds MaxVel (measured as
// displacement per frame, dt fixed).
func TestStepWanderStaysInBoundsAndUnderSpeedLimit(t *testing.T) {
	p := DefaultParams()
	pos := Vec2{X: 0, Y: 0}
	vel := Vec2{}
	const dt = float32(1.0 / 60.0)

	for frame := 0; frame < 600; frame++ {
		prev := pos
		pos, vel = StepWander(7, pos, vel, float32(frame)*dt, dt, p)
		if pos.X < -1 || pos.X > 1 || pos.Y < -1 || pos.Y > 1 {
			t.Fatalf("frame %d: position %v out of [-1,1]^2", frame, pos)
		}
		disp := float32(math.Hypot(float64(pos.X-prev.X), float64(pos.Y-prev.Y)))
		if disp > p.MaxVel*dt+1e-4 {
			t.Fatalf("frame %d: displacement %v exceeds MaxVel*dt %v", frame, disp, p.MaxVel*dt)
		}
	}
}

func TestStepWanderIsDeterministic(t *testing.T) {
	p := DefaultParams()
	a1, v1 := StepWander(3, Vec2{X: 0.2, Y: 0.1}, Vec2{X: 0.01, Y: -0.02}, 1.5, 1.0/60, p)
	a2, v2 := StepWander(3, Vec2{X: 0.2, Y: 0.1}, Vec2{X: 0.01, Y: -0.02}, 1.5, 1.0/60, p)
	if a1 != a2 || v1 != v2 {
		t.Fatal("StepWander must be deterministic for identical (index, position, velocity, time)")
	}
}

func TestWallForcePushesBackInsideBound(t *testing.T) {
	f := wallForce(0.95, 0.92, 40)
	if f >= 0 {
		t.Fatalf("wallForce at positive excess should push negative (inward), got %v", f)
	}
	f = wallForce(-0.95, 0.92, 40)
	if f <= 0 {
		t.Fatalf("wallForce at negative excess should push positive (inward), got %v", f)
	}
	if wallForce(0.5, 0.92, 40) != 0 {
		t.Fatal("wallForce should be zero within bound")
	}
}

func TestClampSpeedCapsAtMaxVel(t *testing.T) {
	v := clampSpeed(Vec2{X: 10, Y: 0}, 0.55)
	speed := math.Hypot(float64(v.X), float64(v.Y))
	if absF(float32(speed)-0.55) > 1e-5 {
		t.Fatalf("clamped speed = %v, want 0.55", speed)
	}
}
