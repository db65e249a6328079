//go:build !nogpu

package nca

import (
	_ "embed"
	"fmt"

	"github.com/tofuswarm/tofu/gpucore"
	"github.com/tofuswarm/tofu/internal/shaderutil"
)

//go:embed shaders/mlp_step.wgsl
var shaderMLPStep string

// GPUEngine runs the MLP back-end's per-step kernel on a GPUAdapter,
// applying the same update rule as mlpEngine.stepOnce; the fire mask comes
// from the shader's own 32-bit hash, so the cells that fire on a given step
// differ from the CPU reference. It ping-pongs two state
// buffers across Steps dispatches, exactly as the CPU reference ping-pongs
// two host-side state values.
type GPUEngine struct {
	adapter gpucore.GPUAdapter

	w, h, steps int
	fireRate    float32

	shader   gpucore.ShaderModuleID
	layout   gpucore.BindGroupLayoutID
	pipeline gpucore.ComputePipelineID

	stateA, stateB gpucore.BufferID
	goalBuf        gpucore.BufferID
	w1Buf, b1Buf   gpucore.BufferID
	w2Buf, b2Buf   gpucore.BufferID
	paramsBuf      gpucore.BufferID

	bindGroups [2]gpucore.BindGroupID // indexed by which buffer is stateIn
}

// NewGPUEngine compiles the MLP step kernel and allocates its buffers for a
// w×h goal grid.
func NewGPUEngine(adapter gpucore.GPUAdapter, w, h, steps int, fireRate float32, weights *Weights) (*GPUEngine, error) {
	e := &GPUEngine{adapter: adapter, w: w, h: h, steps: steps, fireRate: fireRate}

	wgsl := shaderutil.Inject(shaderMLPStep, shaderutil.Constants{
		U32: map[string]uint32{
			"W":      uint32(w),
			"H":      uint32(h),
			"HIDDEN": uint32(hiddenDim),
			"INPUT":  uint32(inputDim),
			"STEP":   0,
		},
		F32: map[string]float32{"FIRE_RATE": fireRate},
	})
	spirv, err := shaderutil.CompileToSPIRV(wgsl)
	if err != nil {
		return nil, fmt.Errorf("nca: compile mlp_step: %w", err)
	}
	if e.shader, err = adapter.CreateShaderModule(spirv, "nca_mlp_step"); err != nil {
		return nil, fmt.Errorf("nca: shader module: %w", err)
	}

	layoutDesc := gpucore.BindGroupLayoutDesc{
		Label: "nca_mlp_step",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeUniformBuffer},
			{Binding: 1, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 2, Type: gpucore.BindingTypeStorageBuffer},
			{Binding: 3, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 4, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 5, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 6, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 7, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
		},
	}
	if e.layout, err = adapter.CreateBindGroupLayout(&layoutDesc); err != nil {
		return nil, fmt.Errorf("nca: bind group layout: %w", err)
	}
	pipelineLayout, err := adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{e.layout})
	if err != nil {
		return nil, fmt.Errorf("nca: pipeline layout: %w", err)
	}
	if e.pipeline, err = adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{
		Label: "nca_mlp_step", Layout: pipelineLayout, ShaderModule: e.shader, EntryPoint: "main",
	}); err != nil {
		return nil, fmt.Errorf("nca: compute pipeline: %w", err)
	}

	cells := w * h
	rw := gpucore.BufferUsageStorage | gpucore.BufferUsageCopyDst | gpucore.BufferUsageCopySrc
	ro := gpucore.BufferUsageStorage | gpucore.BufferUsageCopyDst
	if e.stateA, err = adapter.CreateBuffer(stateDim*cells*4, rw); err != nil {
		return nil, err
	}
	if e.stateB, err = adapter.CreateBuffer(stateDim*cells*4, rw); err != nil {
		return nil, err
	}
	if e.goalBuf, err = adapter.CreateBuffer(cells*4, ro); err != nil {
		return nil, err
	}
	if e.w1Buf, err = adapter.CreateBuffer(len(weights.W1)*4, ro); err != nil {
		return nil, err
	}
	if e.b1Buf, err = adapter.CreateBuffer(len(weights.B1)*4, ro); err != nil {
		return nil, err
	}
	if e.w2Buf, err = adapter.CreateBuffer(len(weights.W2)*4, ro); err != nil {
		return nil, err
	}
	if e.b2Buf, err = adapter.CreateBuffer(len(weights.B2)*4, ro); err != nil {
		return nil, err
	}
	if e.paramsBuf, err = adapter.CreateBuffer(16, gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst); err != nil {
		return nil, err
	}

	adapter.WriteBuffer(e.w1Buf, 0, float32sToBytes(weights.W1))
	adapter.WriteBuffer(e.b1Buf, 0, float32sToBytes(weights.B1))
	adapter.WriteBuffer(e.w2Buf, 0, float32sToBytes(weights.W2))
	adapter.WriteBuffer(e.b2Buf, 0, float32sToBytes(weights.B2))
	adapter.WriteBuffer(e.paramsBuf, 0, paramsToBytes(uint32(w), uint32(h), 0))

	e.bindGroups[0], err = adapter.CreateBindGroup(e.layout, e.entries(e.stateA, e.stateB))
	if err != nil {
		return nil, fmt.Errorf("nca: bind group (A->B): %w", err)
	}
	e.bindGroups[1], err = adapter.CreateBindGroup(e.layout, e.entries(e.stateB, e.stateA))
	if err != nil {
		return nil, fmt.Errorf("nca: bind group (B->A): %w", err)
	}

	return e, nil
}

func (e *GPUEngine) entries(in, out gpucore.BufferID) []gpucore.BindGroupEntry {
	return []gpucore.BindGroupEntry{
		{Binding: 0, Buffer: e.paramsBuf},
		{Binding: 1, Buffer: in},
		{Binding: 2, Buffer: out},
		{Binding: 3, Buffer: e.goalBuf},
		{Binding: 4, Buffer: e.w1Buf},
		{Binding: 5, Buffer: e.b1Buf},
		{Binding: 6, Buffer: e.w2Buf},
		{Binding: 7, Buffer: e.b2Buf},
	}
}

// Run seeds the state buffers to zero, uploads the goal grid, and dispatches
// Steps kernel invocations, ping-ponging bind group slot = step & 1 (never
// building a new bind group mid-run, per the ping-pong design note).
// It returns channel 0 of the final state, clamped to [0,1].
func (e *GPUEngine) Run(goal Grid) (Grid, error) {
	zero := make([]byte, stateDim*e.w*e.h*4)
	e.adapter.WriteBuffer(e.stateA, 0, zero)
	e.adapter.WriteBuffer(e.stateB, 0, zero)
	e.adapter.WriteBuffer(e.goalBuf, 0, float32sToBytes(goal.Data))

	groupsX := (uint32(e.w) + 7) / 8
	groupsY := (uint32(e.h) + 7) / 8

	finalSlot := 0
	for step := 0; step < e.steps; step++ {
		e.adapter.WriteBuffer(e.paramsBuf, 8, u32ToBytes(uint32(step)))
		slot := step & 1
		pass := e.adapter.BeginComputePass()
		pass.SetPipeline(e.pipeline)
		pass.SetBindGroup(0, e.bindGroups[slot])
		pass.Dispatch(groupsX, groupsY, 1)
		pass.End()
		e.adapter.Submit()
		finalSlot = slot
	}
	e.adapter.WaitIdle()

	finalBuf := e.stateA
	if finalSlot == 0 {
		// slot 0 dispatched stateA->stateB, so the freshest data is in stateB.
		finalBuf = e.stateB
	}
	data, err := e.adapter.ReadBuffer(finalBuf, 0, uint64(e.w*e.h*4))
	if err != nil {
		return Grid{}, fmt.Errorf("nca: readback channel 0: %w", err)
	}
	out := NewGrid(e.w, e.h)
	ch0 := bytesToFloat32s(data)
	for i, v := range ch0 {
		out.Data[i] = clampF(v, 0, 1)
	}
	return out, nil
}

// Destroy releases every GPU resource owned by the engine.
func (e *GPUEngine) Destroy() {
	e.adapter.DestroyBindGroup(e.bindGroups[0])
	e.adapter.DestroyBindGroup(e.bindGroups[1])
	e.adapter.DestroyBuffer(e.stateA)
	e.adapter.DestroyBuffer(e.stateB)
	e.adapter.DestroyBuffer(e.goalBuf)
	e.adapter.DestroyBuffer(e.w1Buf)
	e.adapter.DestroyBuffer(e.b1Buf)
	e.adapter.DestroyBuffer(e.w2Buf)
	e.adapter.DestroyBuffer(e.b2Buf)
	e.adapter.DestroyBuffer(e.paramsBuf)
	e.adapter.DestroyComputePipeline(e.pipeline)
	e.adapter.DestroyBindGroupLayout(e.layout)
	e.adapter.DestroyShaderModule(e.shader)
}
