//go:build !nogpu

package trail

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/tofuswarm/tofu/gpucore"
	"github.com/tofuswarm/tofu/internal/shaderutil"
)

//go:embed shaders/decay.wgsl
var shaderDecay string

//go:embed shaders/bloom.wgsl
var shaderBloom string

//go:embed shaders/render.wgsl
var shaderRender string

const workgroupSize = 256

// GPUDispatcher runs the decay, optional bloom, and render kernels against
// shared trail/density/vel buffers owned by the Buffer Registry, writing a
// packed RGBA8 framebuffer into its own output buffer.
type GPUDispatcher struct {
	adapter gpucore.GPUAdapter

	wd, hd   int
	useBloom bool

	decayShader   gpucore.ShaderModuleID
	decayLayout   gpucore.BindGroupLayoutID
	decayPipeline gpucore.ComputePipelineID
	decayBind     gpucore.BindGroupID

	bloomShader   gpucore.ShaderModuleID
	bloomLayout   gpucore.BindGroupLayoutID
	bloomPipeline gpucore.ComputePipelineID
	bloomParams   gpucore.BufferID
	bloomScratch  gpucore.BufferID
	bloomBuf      gpucore.BufferID
	bloomBind     gpucore.BindGroupID

	renderShader   gpucore.ShaderModuleID
	renderLayout   gpucore.BindGroupLayoutID
	renderPipeline gpucore.ComputePipelineID
	outRGBA        gpucore.BufferID
	renderBind     gpucore.BindGroupID
}

// NewGPUDispatcher compiles the trail/bloom/render kernels for a wd×hd
// display grid, binding to the shared trail/density/vel buffers.
func NewGPUDispatcher(adapter gpucore.GPUAdapter, wd, hd int, decay, threshold, tref, maxVel, bloomGain float32, useBloom bool, trailBuf, density, vel gpucore.BufferID) (*GPUDispatcher, error) {
	d := &GPUDispatcher{adapter: adapter, wd: wd, hd: hd, useBloom: useBloom}
	n := wd * hd

	if err := d.buildDecay(trailBuf, density, n, decay); err != nil {
		return nil, err
	}
	if err := d.buildBloom(trailBuf, wd, hd, threshold); err != nil {
		return nil, err
	}
	if err := d.buildRender(trailBuf, density, vel, wd, hd, tref, maxVel, bloomGain, useBloom); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *GPUDispatcher) buildDecay(trailBuf, density gpucore.BufferID, n int, decay float32) error {
	wgsl := shaderutil.Inject(shaderDecay, shaderutil.Constants{
		U32: map[string]uint32{"LEN": uint32(n)},
		F32: map[string]float32{"DECAY": decay},
	})
	spirv, err := shaderutil.CompileToSPIRV(wgsl)
	if err != nil {
		return fmt.Errorf("trail: decay compile: %w", err)
	}
	var errShader error
	if d.decayShader, errShader = d.adapter.CreateShaderModule(spirv, "trail-decay"); errShader != nil {
		return fmt.Errorf("trail: decay shader module: %w", errShader)
	}
	layoutDesc := gpucore.BindGroupLayoutDesc{
		Label: "trail-decay",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeStorageBuffer},
			{Binding: 1, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
		},
	}
	layout, err := d.adapter.CreateBindGroupLayout(&layoutDesc)
	if err != nil {
		return fmt.Errorf("trail: decay bind group layout: %w", err)
	}
	d.decayLayout = layout
	pipelineLayout, err := d.adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{layout})
	if err != nil {
		return fmt.Errorf("trail: decay pipeline layout: %w", err)
	}
	if d.decayPipeline, err = d.adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{
		Label: "trail-decay", Layout: pipelineLayout, ShaderModule: d.decayShader, EntryPoint: "main",
	}); err != nil {
		return fmt.Errorf("trail: decay compute pipeline: %w", err)
	}
	d.decayBind, err = d.adapter.CreateBindGroup(d.decayLayout, []gpucore.BindGroupEntry{
		{Binding: 0, Buffer: trailBuf},
		{Binding: 1, Buffer: density},
	})
	return err
}

func (d *GPUDispatcher) buildBloom(trailBuf gpucore.BufferID, wd, hd int, threshold float32) error {
	wgsl := shaderutil.Inject(shaderBloom, shaderutil.Constants{
		U32: map[string]uint32{"WD": uint32(wd), "HD": uint32(hd)},
		F32: map[string]float32{"THRESHOLD": threshold},
	})
	spirv, err := shaderutil.CompileToSPIRV(wgsl)
	if err != nil {
		return fmt.Errorf("trail: bloom compile: %w", err)
	}
	if d.bloomShader, err = d.adapter.CreateShaderModule(spirv, "trail-bloom"); err != nil {
		return fmt.Errorf("trail: bloom shader module: %w", err)
	}
	layoutDesc := gpucore.BindGroupLayoutDesc{
		Label: "trail-bloom",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeUniformBuffer},
			{Binding: 1, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 2, Type: gpucore.BindingTypeStorageBuffer},
			{Binding: 3, Type: gpucore.BindingTypeStorageBuffer},
		},
	}
	if d.bloomLayout, err = d.adapter.CreateBindGroupLayout(&layoutDesc); err != nil {
		return fmt.Errorf("trail: bloom bind group layout: %w", err)
	}
	pipelineLayout, err := d.adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{d.bloomLayout})
	if err != nil {
		return fmt.Errorf("trail: bloom pipeline layout: %w", err)
	}
	if d.bloomPipeline, err = d.adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{
		Label: "trail-bloom", Layout: pipelineLayout, ShaderModule: d.bloomShader, EntryPoint: "main",
	}); err != nil {
		return fmt.Errorf("trail: bloom compute pipeline: %w", err)
	}

	n := wd * hd
	if d.bloomParams, err = d.adapter.CreateBuffer(16, gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst); err != nil {
		return err
	}
	if d.bloomScratch, err = d.adapter.CreateBuffer(n*4, gpucore.BufferUsageStorage|gpucore.BufferUsageCopyDst); err != nil {
		return err
	}
	if d.bloomBuf, err = d.adapter.CreateBuffer(n*4, gpucore.BufferUsageStorage|gpucore.BufferUsageCopySrc|gpucore.BufferUsageCopyDst); err != nil {
		return err
	}
	d.bloomBind, err = d.adapter.CreateBindGroup(d.bloomLayout, []gpucore.BindGroupEntry{
		{Binding: 0, Buffer: d.bloomParams},
		{Binding: 1, Buffer: trailBuf},
		{Binding: 2, Buffer: d.bloomScratch},
		{Binding: 3, Buffer: d.bloomBuf},
	})
	return err
}

func (d *GPUDispatcher) buildRender(trailBuf, density, vel gpucore.BufferID, wd, hd int, tref, maxVel, bloomGain float32, useBloom bool) error {
	useBloomU := uint32(0)
	if useBloom {
		useBloomU = 1
	}
	wgsl := shaderutil.Inject(shaderRender, shaderutil.Constants{
		U32: map[string]uint32{"WD": uint32(wd), "HD": uint32(hd), "USE_BLOOM": useBloomU},
		F32: map[string]float32{"TREF": tref, "MAX_VEL": maxVel, "BLOOM_GAIN": bloomGain},
	})
	spirv, err := shaderutil.CompileToSPIRV(wgsl)
	if err != nil {
		return fmt.Errorf("trail: render compile: %w", err)
	}
	if d.renderShader, err = d.adapter.CreateShaderModule(spirv, "trail-render"); err != nil {
		return fmt.Errorf("trail: render shader module: %w", err)
	}
	layoutDesc := gpucore.BindGroupLayoutDesc{
		Label: "trail-render",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 1, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 2, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 3, Type: gpucore.BindingTypeReadOnlyStorageBuffer},
			{Binding: 4, Type: gpucore.BindingTypeStorageBuffer},
		},
	}
	if d.renderLayout, err = d.adapter.CreateBindGroupLayout(&layoutDesc); err != nil {
		return fmt.Errorf("trail: render bind group layout: %w", err)
	}
	pipelineLayout, err := d.adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{d.renderLayout})
	if err != nil {
		return fmt.Errorf("trail: render pipeline layout: %w", err)
	}
	if d.renderPipeline, err = d.adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{
		Label: "trail-render", Layout: pipelineLayout, ShaderModule: d.renderShader, EntryPoint: "main",
	}); err != nil {
		return fmt.Errorf("trail: render compute pipeline: %w", err)
	}

	n := wd * hd
	if d.outRGBA, err = d.adapter.CreateBuffer(n*4, gpucore.BufferUsageStorage|gpucore.BufferUsageCopySrc|gpucore.BufferUsageCopyDst); err != nil {
		return err
	}
	d.renderBind, err = d.adapter.CreateBindGroup(d.renderLayout, []gpucore.BindGroupEntry{
		{Binding: 0, Buffer: trailBuf},
		{Binding: 1, Buffer: density},
		{Binding: 2, Buffer: vel},
		{Binding: 3, Buffer: d.bloomBuf},
		{Binding: 4, Buffer: d.outRGBA},
	})
	return err
}

func workgroups(n int) uint32 {
	return (uint32(n) + workgroupSize - 1) / workgroupSize
}

// Decay runs the trail decay kernel: trail <- trail*DECAY + density.
func (d *GPUDispatcher) Decay() {
	pass := d.adapter.BeginComputePass()
	pass.SetPipeline(d.decayPipeline)
	pass.SetBindGroup(0, d.decayBind)
	pass.Dispatch(workgroups(d.wd*d.hd), 1, 1)
	pass.End()
	d.adapter.Submit()
}

// Bloom runs the two-pass separable Gaussian bloom kernel, if enabled.
func (d *GPUDispatcher) Bloom() {
	if !d.useBloom {
		return
	}
	for pass := uint32(0); pass < 2; pass++ {
		buf := make([]byte, 16)
		binary.LittleEndian.PutUint32(buf[0:4], pass)
		d.adapter.WriteBuffer(d.bloomParams, 0, buf)

		enc := d.adapter.BeginComputePass()
		enc.SetPipeline(d.bloomPipeline)
		enc.SetBindGroup(0, d.bloomBind)
		enc.Dispatch(workgroups(d.wd*d.hd), 1, 1)
		enc.End()
		d.adapter.Submit()
	}
}

// Render tone-maps trail/density/vel(/bloom) into the packed RGBA8 output
// buffer. Call ReadOutRGBA afterward to retrieve the bytes.
func (d *GPUDispatcher) Render() {
	pass := d.adapter.BeginComputePass()
	pass.SetPipeline(d.renderPipeline)
	pass.SetBindGroup(0, d.renderBind)
	pass.Dispatch(workgroups(d.wd*d.hd), 1, 1)
	pass.End()
	d.adapter.Submit()
}

// ReadOutRGBA blocks until the device is idle and reads back the packed
// RGBA8 framebuffer.
func (d *GPUDispatcher) ReadOutRGBA() ([]byte, error) {
	d.adapter.WaitIdle()
	return d.adapter.ReadBuffer(d.outRGBA, 0, uint64(d.wd*d.hd*4))
}

// Destroy releases every GPU resource owned by the dispatcher, excluding
// the shared trail/density/vel buffers it was bound to.
func (d *GPUDispatcher) Destroy() {
	d.adapter.DestroyBindGroup(d.decayBind)
	d.adapter.DestroyComputePipeline(d.decayPipeline)
	d.adapter.DestroyBindGroupLayout(d.decayLayout)
	d.adapter.DestroyShaderModule(d.decayShader)

	d.adapter.DestroyBindGroup(d.bloomBind)
	d.adapter.DestroyBuffer(d.bloomParams)
	d.adapter.DestroyBuffer(d.bloomScratch)
	d.adapter.DestroyBuffer(d.bloomBuf)
	d.adapter.DestroyComputePipeline(d.bloomPipeline)
	d.adapter.DestroyBindGroupLayout(d.bloomLayout)
	d.adapter.DestroyShaderModule(d.bloomShader)

	d.adapter.DestroyBindGroup(d.renderBind)
	d.adapter.DestroyBuffer(d.outRGBA)
	d.adapter.DestroyComputePipeline(d.renderPipeline)
	d.adapter.DestroyBindGroupLayout(d.renderLayout)
	d.adapter.DestroyShaderModule(d.renderShader)
}
