//go:build !nogpu

package splat

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/tofuswarm/tofu/gpucore"
	"github.com/tofuswarm/tofu/internal/shaderutil"
)

//go:embed shaders/splat.wgsl
var shaderSplat string

const workgroupSize = 256

// GPUDispatcher runs the splat kernel against shared position/velocity
// buffers and writes into shared density/vel accumulator buffers owned by
// the Buffer Registry.
type GPUDispatcher struct {
	adapter gpucore.GPUAdapter

	n int

	shader    gpucore.ShaderModuleID
	layout    gpucore.BindGroupLayoutID
	pipeline  gpucore.ComputePipelineID
	paramsBuf gpucore.BufferID
	bindGroup gpucore.BindGroupID
}

// NewGPUDispatcher compiles the splat kernel for an n-atom, wd×hd display
// grid, binding it to the given shared buffers.
func NewGPUDispatcher(adapter gpucore.GPUAdapter, n, wd, hd int, maxVel float32, position, velocity, density, vel gpucore.BufferID) (*GPUDispatcher, error) {
	d := &GPUDispatcher{adapter: adapter, n: n}

	wgsl := shaderutil.Inject(shaderSplat, shaderutil.Constants{
		U32: map[string]uint32{"WD": uint32(wd), "HD": uint32(hd)},
		F32: map[string]float32{"MAX_VEL": maxVel},
	})
	spirv, err := shaderutil.CompileToSPIRV(wgsl)
	if err != nil {
		return nil, fmt.Errorf("splat: compile: %w", err)
	}
	if d.shader, err = adapter.CreateShaderModule(spirv, "splat"); err != nil {
		return nil, fmt.Errorf("splat: shader module: %w", err)
	}

	layoutDesc := gpucore.BindGroupLayoutDesc{
		Label: "splat",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeUniformBuffer},
			{Binding: 1, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 2, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 3, Type: gpucore.BindingTypeStorageBuffer},
			{Binding: 4, Type: gpucore.BindingTypeStorageBuffer},
		},
	}
	if d.layout, err = adapter.CreateBindGroupLayout(&layoutDesc); err != nil {
		return nil, fmt.Errorf("splat: bind group layout: %w", err)
	}
	pipelineLayout, err := adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{d.layout})
	if err != nil {
		return nil, fmt.Errorf("splat: pipeline layout: %w", err)
	}
	if d.pipeline, err = adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{
		Label: "splat", Layout: pipelineLayout, ShaderModule: d.shader, EntryPoint: "main",
	}); err != nil {
		return nil, fmt.Errorf("splat: compute pipeline: %w", err)
	}

	if d.paramsBuf, err = adapter.CreateBuffer(16, gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst); err != nil {
		return nil, err
	}
	d.bindGroup, err = adapter.CreateBindGroup(d.layout, []gpucore.BindGroupEntry{
		{Binding: 0, Buffer: d.paramsBuf},
		{Binding: 1, Buffer: position},
		{Binding: 2, Buffer: velocity},
		{Binding: 3, Buffer: density},
		{Binding: 4, Buffer: vel},
	})
	if err != nil {
		return nil, fmt.Errorf("splat: bind group: %w", err)
	}

	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))
	d.adapter.WriteBuffer(d.paramsBuf, 0, buf)

	return d, nil
}

// Dispatch scatters every atom's density/velocity contribution. The caller
// is responsible for clearing the density/vel accumulators beforehand, per
// invariant 2.
func (d *GPUDispatcher) Dispatch() {
	pass := d.adapter.BeginComputePass()
	pass.SetPipeline(d.pipeline)
	pass.SetBindGroup(0, d.bindGroup)
	pass.Dispatch((uint32(d.n)+workgroupSize-1)/workgroupSize, 1, 1)
	pass.End()
	d.adapter.Submit()
}

// Destroy releases every GPU resource owned by the dispatcher, excluding
// the shared buffers it was bound to.
func (d *GPUDispatcher) Destroy() {
	d.adapter.DestroyBindGroup(d.bindGroup)
	d.adapter.DestroyBuffer(d.paramsBuf)
	d.adapter.DestroyComputePipeline(d.pipeline)
	d.adapter.DestroyBindGroupLayout(d.layout)
	d.adapter.DestroyShaderModule(d.shader)
}
