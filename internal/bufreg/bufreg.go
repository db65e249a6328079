//go:build !nogpu

// Package bufreg implements the Buffer Registry (§4.1): it allocates every
// persistent GPU buffer shared across pipeline stages, sized from the five
// constants (N, W_g/H_g, W_d/H_d, K) that every shader bakes in as compile
// time literals, and wires the per-stage GPU dispatchers to them.
//
// Buffers scoped entirely within one stage (NCA's ping-ponged state pair,
// OT's centroid/label accumulators, Trail's bloom scratch) are allocated by
// that stage's own GPU dispatcher instead of here, since nothing outside the
// stage ever binds to them — see nca.GPUEngine, ot.GPUDispatcher,
// trail.GPUDispatcher. The registry's job is strictly the buffers more than
// one stage binds to: position, velocity, source, target, density, vel,
// trail.
package bufreg

import (
	"fmt"

	"github.com/tofuswarm/tofu/gpucore"
	"github.com/tofuswarm/tofu/internal/config"
	"github.com/tofuswarm/tofu/internal/physics"
	"github.com/tofuswarm/tofu/internal/splat"
	"github.com/tofuswarm/tofu/internal/trail"
)

// Registry owns the cross-stage shared buffers and the GPU dispatchers bound
// to them: Physics (reads/writes position+velocity in place — each atom's
// update depends only on its own position/velocity/source/target, so unlike
// NCA there is no neighbor-read hazard and no ping-pong is required), Splat
// (reads position+velocity, scatters into density+vel), and Trail (decay +
// optional bloom + render, consuming density/vel/trail).
type Registry struct {
	adapter gpucore.GPUAdapter
	cfg     config.Config

	Position gpucore.BufferID // vec2<f32>[N]
	Velocity gpucore.BufferID // vec2<f32>[N]
	Source   gpucore.BufferID // vec2<f32>[N]
	Target   gpucore.BufferID // vec2<f32>[N]

	Density gpucore.BufferID // atomic<i32>[WD*HD]
	Vel     gpucore.BufferID // atomic<i32>[WD*HD]
	Trail   gpucore.BufferID // f32[WD*HD], never cleared

	Physics   *physics.GPUDispatcher
	Splat     *splat.GPUDispatcher
	TrailDisp *trail.GPUDispatcher
}

// New allocates every shared buffer for cfg and constructs the Physics,
// Splat and Trail dispatchers bound to them.
func New(adapter gpucore.GPUAdapter, cfg config.Config) (*Registry, error) {
	r := &Registry{adapter: adapter, cfg: cfg}

	atomBytes := cfg.N * 8 // vec2<f32>
	rw := gpucore.BufferUsageStorage | gpucore.BufferUsageCopyDst | gpucore.BufferUsageCopySrc

	var err error
	if r.Position, err = adapter.CreateBuffer(atomBytes, rw); err != nil {
		return nil, fmt.Errorf("bufreg: position buffer: %w", err)
	}
	if r.Velocity, err = adapter.CreateBuffer(atomBytes, rw); err != nil {
		return nil, fmt.Errorf("bufreg: velocity buffer: %w", err)
	}
	if r.Source, err = adapter.CreateBuffer(atomBytes, rw); err != nil {
		return nil, fmt.Errorf("bufreg: source buffer: %w", err)
	}
	if r.Target, err = adapter.CreateBuffer(atomBytes, rw); err != nil {
		return nil, fmt.Errorf("bufreg: target buffer: %w", err)
	}

	displayCells := cfg.WD * cfg.HD
	if r.Density, err = adapter.CreateBuffer(displayCells*4, rw); err != nil {
		return nil, fmt.Errorf("bufreg: density buffer: %w", err)
	}
	if r.Vel, err = adapter.CreateBuffer(displayCells*4, rw); err != nil {
		return nil, fmt.Errorf("bufreg: vel buffer: %w", err)
	}
	if r.Trail, err = adapter.CreateBuffer(displayCells*4, rw); err != nil {
		return nil, fmt.Errorf("bufreg: trail buffer: %w", err)
	}

	physParams := physics.DefaultParams()
	physParams.Bound = float32(cfg.Bound)
	physParams.MaxVel = float32(cfg.MaxVel)
	if r.Physics, err = physics.NewGPUDispatcher(adapter, cfg.N, physParams, r.Source, r.Target, r.Position, r.Velocity); err != nil {
		return nil, fmt.Errorf("bufreg: physics dispatcher: %w", err)
	}

	if r.Splat, err = splat.NewGPUDispatcher(adapter, cfg.N, cfg.WD, cfg.HD, float32(cfg.MaxVel), r.Position, r.Velocity, r.Density, r.Vel); err != nil {
		return nil, fmt.Errorf("bufreg: splat dispatcher: %w", err)
	}

	if r.TrailDisp, err = trail.NewGPUDispatcher(adapter, cfg.WD, cfg.HD, float32(cfg.Decay), trailThreshold, trailTRef, float32(cfg.MaxVel), trailBloomGain, cfg.UseBloom, r.Trail, r.Density, r.Vel); err != nil {
		return nil, fmt.Errorf("bufreg: trail dispatcher: %w", err)
	}

	return r, nil
}

const (
	trailThreshold = 2.0
	trailTRef      = 16.0
	trailBloomGain = 0.6
)

// ClearFrameAccumulators zeroes density and vel via host-queue writes, per
// §5's "cleared per frame via host-queue writes" rule.
func (r *Registry) ClearFrameAccumulators() {
	cells := r.cfg.WD * r.cfg.HD
	zero := make([]byte, cells*4)
	r.adapter.WriteBuffer(r.Density, 0, zero)
	r.adapter.WriteBuffer(r.Vel, 0, zero)
}

// UploadAtoms writes the CPU-mirrored source/target arrays to the GPU, used
// by the Orchestrator at step 6 of goto_shape.
func (r *Registry) UploadAtoms(source, target []byte) {
	r.adapter.WriteBuffer(r.Source, 0, source)
	r.adapter.WriteBuffer(r.Target, 0, target)
}

// Destroy releases every buffer and dispatcher the registry owns.
func (r *Registry) Destroy() {
	r.Physics.Destroy()
	r.Splat.Destroy()
	r.TrailDisp.Destroy()
	r.adapter.DestroyBuffer(r.Position)
	r.adapter.DestroyBuffer(r.Velocity)
	r.adapter.DestroyBuffer(r.Source)
	r.adapter.DestroyBuffer(r.Target)
	r.adapter.DestroyBuffer(r.Density)
	r.adapter.DestroyBuffer(r.Vel)
	r.adapter.DestroyBuffer(r.Trail)
}
