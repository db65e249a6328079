//go:build !nogpu

package physics

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tofuswarm/tofu/gpucore"
	"github.com/tofuswarm/tofu/internal/shaderutil"
)

//go:embed shaders/physics_step.wgsl
var shaderPhysicsStep string

const workgroupSize = 256

// GPUDispatcher runs the per-atom physics kernel against the position,
// velocity, source and target buffers already resident in the Buffer
// Registry; it owns only its pipeline and bind group, not the buffers
// themselves, since those are shared with the Splat Engine.
type GPUDispatcher struct {
	adapter gpucore.GPUAdapter

	n int

	shader    gpucore.ShaderModuleID
	layout    gpucore.BindGroupLayoutID
	pipeline  gpucore.ComputePipelineID
	paramsBuf gpucore.BufferID
	bindGroup gpucore.BindGroupID
}

// NewGPUDispatcher compiles the physics kernel and binds it to the given
// source/target/position/velocity buffers, which must already be sized for
// n atoms as vec2<f32> arrays.
func NewGPUDispatcher(adapter gpucore.GPUAdapter, n int, p Params, source, target, position, velocity gpucore.BufferID) (*GPUDispatcher, error) {
	d := &GPUDispatcher{adapter: adapter, n: n}

	wgsl := shaderutil.Inject(shaderPhysicsStep, shaderutil.Constants{
		F32: map[string]float32{
			"BOUND": p.Bound, "MAX_VEL": p.MaxVel, "DAMPING": p.Damping, "WALL_GAIN": p.WallGain,
		},
	})
	spirv, err := shaderutil.CompileToSPIRV(wgsl)
	if err != nil {
		return nil, fmt.Errorf("physics: compile: %w", err)
	}
	if d.shader, err = adapter.CreateShaderModule(spirv, "physics_step"); err != nil {
		return nil, fmt.Errorf("physics: shader module: %w", err)
	}

	layoutDesc := gpucore.BindGroupLayoutDesc{
		Label: "physics_step",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeUniformBuffer},
			{Binding: 1, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 2, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 3, Type: gpucore.BindingTypeStorageBuffer},
			{Binding: 4, Type: gpucore.BindingTypeStorageBuffer},
		},
	}
	if d.layout, err = adapter.CreateBindGroupLayout(&layoutDesc); err != nil {
		return nil, fmt.Errorf("physics: bind group layout: %w", err)
	}
	pipelineLayout, err := adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{d.layout})
	if err != nil {
		return nil, fmt.Errorf("physics: pipeline layout: %w", err)
	}
	if d.pipeline, err = adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{
		Label: "physics_step", Layout: pipelineLayout, ShaderModule: d.shader, EntryPoint: "main",
	}); err != nil {
		return nil, fmt.Errorf("physics: compute pipeline: %w", err)
	}

	if d.paramsBuf, err = adapter.CreateBuffer(32, gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	d.bindGroup, err = adapter.CreateBindGroup(d.layout, []gpucore.BindGroupEntry{
		{Binding: 0, Buffer: d.paramsBuf},
		{Binding: 1, Buffer: source},
		{Binding: 2, Buffer: target},
		{Binding: 3, Buffer: position},
		{Binding: 4, Buffer: velocity},
	})
	if err != nil {
		return nil, fmt.Errorf("physics: bind group: %w", err)
	}
	return d, nil
}

// Step dispatches one physics tick. hasTargets selects morph mode
// (>=0.5) or wander mode; morphT, timeSec and dt feed the respective branch.
func (d *GPUDispatcher) Step(hasTargets, morphT, timeSec, dt float32) {
	d.adapter.WriteBuffer(d.paramsBuf, 0, paramsToBytes(uint32(d.n), hasTargets, morphT, timeSec, dt))
	pass := d.adapter.BeginComputePass()
	pass.SetPipeline(d.pipeline)
	pass.SetBindGroup(0, d.bindGroup)
	pass.Dispatch((uint32(d.n)+workgroupSize-1)/workgroupSize, 1, 1)
	pass.End()
	d.adapter.Submit()
}

// Destroy releases every GPU resource owned by the dispatcher. It does not
// destroy the shared source/target/position/velocity buffers.
func (d *GPUDispatcher) Destroy() {
	d.adapter.DestroyBindGroup(d.bindGroup)
	d.adapter.DestroyBuffer(d.paramsBuf)
	d.adapter.DestroyComputePipeline(d.pipeline)
	d.adapter.DestroyBindGroupLayout(d.layout)
	d.adapter.DestroyShaderModule(d.shader)
}

func paramsToBytes(count uint32, hasTargets, morphT, timeSec, dt float32) []byte {
	buf := make([]byte, 32)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], count)
	le.PutUint32(buf[4:8], math.Float32bits(hasTargets))
	le.PutUint32(buf[8:12], math.Float32bits(morphT))
	le.PutUint32(buf[12:16], math.Float32bits(timeSec))
	le.PutUint32(buf[16:20], math.Float32bits(dt))
	return buf
}
