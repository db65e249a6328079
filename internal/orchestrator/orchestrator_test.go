package orchestrator

import (
	"testing"

	"github.com/tofuswarm/tofu/internal/config"
	"github.com/tofuswarm/tofu/internal/nca"
	"github.com/tofuswarm/tofu/internal/physics"
	"github.com/tofuswarm/tofu/internal/shapes"
)

func testConfig() config.Config {
	c := config.Default()
	c.N = 64
	c.WG, c.HG = 16, 16
	c.WD, c.HD = 32, 32
	c.K = 4
	c.ITER = 2
	c.Steps = 4
	c.MorphDuration = 2.0
	c.HoldDuration = 3.5
	return c
}

func newTestOrchestrator() *Orchestrator {
	cfg := testConfig()
	lib := shapes.New(cfg.WG, cfg.HG)
	engine := nca.New(nil, cfg.Steps, float32(cfg.FireRate)) // RDS fallback, fast
	return New(cfg, lib, engine, 1)
}

func TestNewSeedsWanderState(t *testing.T) {
	o := newTestOrchestrator()
	if o.hasTargets {
		t.Fatal("new orchestrator should start in wander mode (has_targets=0)")
	}
	if o.Phase() != PhaseWander.String() {
		t.Fatalf("phase = %q, want %q", o.Phase(), PhaseWander.String())
	}
	for _, p := range o.Positions() {
		if p.X < -1 || p.X > 1 || p.Y < -1 || p.Y > 1 {
			t.Fatalf("seeded position out of [-1,1]^2: %+v", p)
		}
	}
}

// Scenario S6: a second goto_shape call while transitioning=true is
// rejected, not queued.
func TestSubmitRejectsWhileTransitioning(t *testing.T) {
	o := newTestOrchestrator()
	o.transitioning = true
	canonical, ok := o.Submit("circle")
	if ok || canonical != "" {
		t.Fatalf("Submit during transition = (%q, %v), want (\"\", false)", canonical, ok)
	}
}

func TestSubmitResolvesAndActivatesTargets(t *testing.T) {
	o := newTestOrchestrator()
	canonical, ok := o.Submit("circle")
	if !ok {
		t.Fatal("Submit(\"circle\") failed")
	}
	if canonical != "circle" {
		t.Fatalf("canonical = %q, want \"circle\"", canonical)
	}
	if !o.hasTargets {
		t.Fatal("hasTargets should be true after a successful transition")
	}
	if o.morphT != 0 {
		t.Fatalf("morphT = %v, want 0 immediately after transition", o.morphT)
	}
	if !o.userControlled {
		t.Fatal("Submit should set userControlled")
	}
	if o.Status() != "circle" {
		t.Fatalf("Status() = %q, want \"circle\"", o.Status())
	}
	if o.transitioning {
		t.Fatal("transitioning flag must be cleared after goto_shape returns")
	}
}

// The very first transition has no prior target to morph from, so source
// must start from the swarm's seeded wander positions, not the zero value.
func TestFirstGotoShapeCopiesWanderPositionIntoSource(t *testing.T) {
	o := newTestOrchestrator()
	wantSource := append([]physics.Vec2(nil), o.position...)

	o.Submit("circle")

	for i, s := range o.source {
		if s != wantSource[i] {
			t.Fatalf("source[%d] = %+v, want seeded wander position %+v", i, s, wantSource[i])
		}
	}
}

func TestGotoShapeCopiesPriorTargetIntoSource(t *testing.T) {
	o := newTestOrchestrator()
	o.Submit("circle")
	firstTarget := append([]physics.Vec2(nil), o.target...)

	o.Submit("square")
	for i, s := range o.source {
		if s != firstTarget[i] {
			t.Fatalf("source[%d] = %+v, want prior target %+v", i, s, firstTarget[i])
		}
	}
}

func TestTickAdvancesMorphT(t *testing.T) {
	o := newTestOrchestrator()
	o.Submit("circle")

	o.Tick(0)
	o.Tick(16) // ~16ms frame
	if o.morphT <= 0 {
		t.Fatalf("morphT = %v after two ticks, want > 0", o.morphT)
	}
	if o.morphT > 1 {
		t.Fatalf("morphT = %v, want <= 1", o.morphT)
	}
}

func TestTickClampsLargeDt(t *testing.T) {
	o := newTestOrchestrator()
	o.Submit("circle")
	o.Tick(0)
	o.Tick(100_000) // a huge gap must be clamped to maxDtSec
	want := float32(maxDtSec) / float32(o.cfg.MorphDuration)
	if absF(o.morphT-want) > 1e-4 {
		t.Fatalf("morphT = %v, want ~%v (dt clamped to %v)", o.morphT, want, maxDtSec)
	}
}

func TestClearUnsetsUserControlledAndAdvances(t *testing.T) {
	o := newTestOrchestrator()
	o.Submit("circle")
	if !o.userControlled {
		t.Fatal("expected userControlled after Submit")
	}
	o.Clear()
	if o.userControlled {
		t.Fatal("Clear should unset userControlled")
	}
	if o.cycleIndex != 1 || !o.hasTargets {
		t.Fatalf("Clear should trigger an auto-cycle advance (a transition), cycleIndex = %d", o.cycleIndex)
	}
}

func TestTickFPSProducesPositiveEstimateAfterTwoSamples(t *testing.T) {
	o := newTestOrchestrator()
	o.TickFPS(0)
	o.TickFPS(16.666)
	if o.FPS() <= 0 {
		t.Fatalf("FPS() = %v, want > 0 after two samples", o.FPS())
	}
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
