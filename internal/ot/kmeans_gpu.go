//go:build !nogpu

// kmeans_gpu.go drives the k-means stages of the OT Engine on the GPU,
// mirroring the CPU reference in kmeans.go stage-for-stage. It follows the
// embedded-WGSL-per-stage, explicit-bind-group-layout dispatch pattern
// established by internal/gpu/vello_compute.go, but programs against the
// gpucore.GPUAdapter abstraction instead of a concrete hal.Device so the
// OT Engine never depends on a particular backend.
package ot

import (
	_ "embed"
	"fmt"

	"github.com/tofuswarm/tofu/gpucore"
	"github.com/tofuswarm/tofu/internal/shaderutil"
)

//go:embed shaders/kmeans_assign.wgsl
var shaderAssign string

//go:embed shaders/kmeans_accumulate.wgsl
var shaderAccumulate string

//go:embed shaders/kmeans_divide.wgsl
var shaderDivide string

const kmeansWorkgroupSize = 256

// GPUDispatcher runs the k-means assign/accumulate/divide cycle on an
// attached GPUAdapter. Buffers are allocated once and reused across every
// transition; only the point/centroid contents change per call.
type GPUDispatcher struct {
	adapter gpucore.GPUAdapter

	n, k  int
	scale float32

	shaderAssign     gpucore.ShaderModuleID
	shaderAccumulate gpucore.ShaderModuleID
	shaderDivide     gpucore.ShaderModuleID

	pipelineAssign     gpucore.ComputePipelineID
	pipelineAccumulate gpucore.ComputePipelineID
	pipelineDivide     gpucore.ComputePipelineID

	layoutAssign     gpucore.BindGroupLayoutID
	layoutAccumulate gpucore.BindGroupLayoutID
	layoutDivide     gpucore.BindGroupLayoutID

	pointsBuf    gpucore.BufferID
	centroidsBuf gpucore.BufferID
	labelsBuf    gpucore.BufferID
	sumXBuf      gpucore.BufferID
	sumYBuf      gpucore.BufferID
	countsBuf    gpucore.BufferID
	paramsBuf    gpucore.BufferID

	bgAssign     gpucore.BindGroupID
	bgAccumulate gpucore.BindGroupID
	bgDivide     gpucore.BindGroupID
}

// NewGPUDispatcher compiles the k-means shaders and allocates every buffer
// sized for n points and k centroids.
func NewGPUDispatcher(adapter gpucore.GPUAdapter, n, k int, scale float32) (*GPUDispatcher, error) {
	d := &GPUDispatcher{adapter: adapter, n: n, k: k, scale: scale}

	consts := shaderutil.Constants{
		U32: map[string]uint32{"K": uint32(k)},
		F32: map[string]float32{"SCALE": scale},
	}

	var err error
	if d.shaderAssign, d.pipelineAssign, d.layoutAssign, err = d.buildStage(
		shaderutil.Inject(shaderAssign, consts), assignLayout(), "ot_kmeans_assign"); err != nil {
		return nil, err
	}
	if d.shaderAccumulate, d.pipelineAccumulate, d.layoutAccumulate, err = d.buildStage(
		shaderutil.Inject(shaderAccumulate, consts), accumulateLayout(), "ot_kmeans_accumulate"); err != nil {
		return nil, err
	}
	if d.shaderDivide, d.pipelineDivide, d.layoutDivide, err = d.buildStage(
		shaderutil.Inject(shaderDivide, consts), divideLayout(), "ot_kmeans_divide"); err != nil {
		return nil, err
	}

	if err := d.allocBuffers(); err != nil {
		return nil, err
	}
	if err := d.buildBindGroups(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *GPUDispatcher) buildStage(wgsl string, layout gpucore.BindGroupLayoutDesc, label string) (gpucore.ShaderModuleID, gpucore.ComputePipelineID, gpucore.BindGroupLayoutID, error) {
	spirv, err := shaderutil.CompileToSPIRV(wgsl)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("ot: compile %s: %w", label, err)
	}
	module, err := d.adapter.CreateShaderModule(spirv, label)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("ot: shader module %s: %w", label, err)
	}
	bgLayout, err := d.adapter.CreateBindGroupLayout(&layout)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("ot: bind group layout %s: %w", label, err)
	}
	pipelineLayout, err := d.adapter.CreatePipelineLayout([]gpucore.BindGroupLayoutID{bgLayout})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("ot: pipeline layout %s: %w", label, err)
	}
	pipeline, err := d.adapter.CreateComputePipeline(&gpucore.ComputePipelineDesc{
		Label:        label,
		Layout:       pipelineLayout,
		ShaderModule: module,
		EntryPoint:   "main",
	})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("ot: compute pipeline %s: %w", label, err)
	}
	return module, pipeline, bgLayout, nil
}

func uniformEntry(binding uint32) gpucore.BindGroupLayoutEntry {
	return gpucore.BindGroupLayoutEntry{Binding: binding, Type: gpucore.BindingTypeUniformBuffer}
}
func storageRO(binding uint32) gpucore.BindGroupLayoutEntry {
	return gpucore.BindGroupLayoutEntry{Binding: binding, Type: gpucore.BindingTypeReadOnlyStorageBuffer}
}
func storageRW(binding uint32) gpucore.BindGroupLayoutEntry {
	return gpucore.BindGroupLayoutEntry{Binding: binding, Type: gpucore.BindingTypeStorageBuffer}
}

func assignLayout() gpucore.BindGroupLayoutDesc {
	return gpucore.BindGroupLayoutDesc{
		Label: "ot_kmeans_assign",
		Entries: []gpucore.BindGroupLayoutEntry{
			uniformEntry(0), storageRO(1), storageRO(2), storageRW(3),
		},
	}
}

func accumulateLayout() gpucore.BindGroupLayoutDesc {
	return gpucore.BindGroupLayoutDesc{
		Label: "ot_kmeans_accumulate",
		Entries: []gpucore.BindGroupLayoutEntry{
			uniformEntry(0), storageRO(1), storageRO(2), storageRW(3), storageRW(4), storageRW(5),
		},
	}
}

func divideLayout() gpucore.BindGroupLayoutDesc {
	return gpucore.BindGroupLayoutDesc{
		Label: "ot_kmeans_divide",
		Entries: []gpucore.BindGroupLayoutEntry{
			storageRO(0), storageRO(1), storageRO(2), storageRW(3),
		},
	}
}

func (d *GPUDispatcher) allocBuffers() error {
	var err error
	alloc := func(size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
		return d.adapter.CreateBuffer(size, usage)
	}
	rw := gpucore.BufferUsageStorage | gpucore.BufferUsageCopyDst | gpucore.BufferUsageCopySrc
	if d.pointsBuf, err = alloc(d.n*8, rw); err != nil {
		return err
	}
	if d.centroidsBuf, err = alloc(d.k*8, rw); err != nil {
		return err
	}
	if d.labelsBuf, err = alloc(d.n*4, rw); err != nil {
		return err
	}
	if d.sumXBuf, err = alloc(d.k*4, rw); err != nil {
		return err
	}
	if d.sumYBuf, err = alloc(d.k*4, rw); err != nil {
		return err
	}
	if d.countsBuf, err = alloc(d.k*4, rw); err != nil {
		return err
	}
	if d.paramsBuf, err = alloc(4, gpucore.BufferUsageUniform|gpucore.BufferUsageCopyDst); err != nil {
		return err
	}
	return nil
}

func (d *GPUDispatcher) buildBindGroups() error {
	var err error
	d.bgAssign, err = d.adapter.CreateBindGroup(d.layoutAssign, []gpucore.BindGroupEntry{
		{Binding: 0, Buffer: d.paramsBuf},
		{Binding: 1, Buffer: d.pointsBuf},
		{Binding: 2, Buffer: d.centroidsBuf},
		{Binding: 3, Buffer: d.labelsBuf},
	})
	if err != nil {
		return err
	}
	d.bgAccumulate, err = d.adapter.CreateBindGroup(d.layoutAccumulate, []gpucore.BindGroupEntry{
		{Binding: 0, Buffer: d.paramsBuf},
		{Binding: 1, Buffer: d.pointsBuf},
		{Binding: 2, Buffer: d.labelsBuf},
		{Binding: 3, Buffer: d.sumXBuf},
		{Binding: 4, Buffer: d.sumYBuf},
		{Binding: 5, Buffer: d.countsBuf},
	})
	if err != nil {
		return err
	}
	d.bgDivide, err = d.adapter.CreateBindGroup(d.layoutDivide, []gpucore.BindGroupEntry{
		{Binding: 0, Buffer: d.sumXBuf},
		{Binding: 1, Buffer: d.sumYBuf},
		{Binding: 2, Buffer: d.countsBuf},
		{Binding: 3, Buffer: d.centroidsBuf},
	})
	return err
}

func workgroups(count, size int) uint32 {
	return uint32((count + size - 1) / size)
}

// Run uploads points and seed centroids, iterates assign/accumulate/divide
// for iters rounds — clearing the accumulators via a host-queue write
// between each iteration rather than an in-kernel store, per the ordering
// pitfall in the design notes — and reads back the converged centroids and
// labels.
func (d *GPUDispatcher) Run(points []Point, seedCentroids []Point, iters int) (KMeansResult, error) {
	d.adapter.WriteBuffer(d.pointsBuf, 0, pointsToBytes(points))
	d.adapter.WriteBuffer(d.centroidsBuf, 0, pointsToBytes(seedCentroids))
	d.adapter.WriteBuffer(d.paramsBuf, 0, u32ToBytes(uint32(len(points))))

	zeroK := make([]byte, d.k*4)

	for iter := 0; iter < iters; iter++ {
		d.adapter.WriteBuffer(d.sumXBuf, 0, zeroK)
		d.adapter.WriteBuffer(d.sumYBuf, 0, zeroK)
		d.adapter.WriteBuffer(d.countsBuf, 0, zeroK)
		d.adapter.Submit()

		pass := d.adapter.BeginComputePass()
		pass.SetPipeline(d.pipelineAssign)
		pass.SetBindGroup(0, d.bgAssign)
		pass.Dispatch(workgroups(d.n, kmeansWorkgroupSize), 1, 1)
		pass.End()

		pass = d.adapter.BeginComputePass()
		pass.SetPipeline(d.pipelineAccumulate)
		pass.SetBindGroup(0, d.bgAccumulate)
		pass.Dispatch(workgroups(d.n, kmeansWorkgroupSize), 1, 1)
		pass.End()

		pass = d.adapter.BeginComputePass()
		pass.SetPipeline(d.pipelineDivide)
		pass.SetBindGroup(0, d.bgDivide)
		pass.Dispatch(workgroups(d.k, kmeansWorkgroupSize), 1, 1)
		pass.End()

		d.adapter.Submit()
	}

	// Final assign pass writes converged labels.
	pass := d.adapter.BeginComputePass()
	pass.SetPipeline(d.pipelineAssign)
	pass.SetBindGroup(0, d.bgAssign)
	pass.Dispatch(workgroups(d.n, kmeansWorkgroupSize), 1, 1)
	pass.End()
	d.adapter.Submit()
	d.adapter.WaitIdle()

	centroidBytes, err := d.adapter.ReadBuffer(d.centroidsBuf, 0, uint64(d.k*8))
	if err != nil {
		return KMeansResult{}, fmt.Errorf("ot: readback centroids: %w", err)
	}
	labelBytes, err := d.adapter.ReadBuffer(d.labelsBuf, 0, uint64(d.n*4))
	if err != nil {
		return KMeansResult{}, fmt.Errorf("ot: readback labels: %w", err)
	}
	return KMeansResult{
		Centroids: bytesToPoints(centroidBytes),
		Labels:    bytesToU32AsInt(labelBytes),
	}, nil
}

// Destroy releases every GPU resource owned by the dispatcher.
func (d *GPUDispatcher) Destroy() {
	d.adapter.DestroyBindGroup(d.bgAssign)
	d.adapter.DestroyBindGroup(d.bgAccumulate)
	d.adapter.DestroyBindGroup(d.bgDivide)
	d.adapter.DestroyBuffer(d.pointsBuf)
	d.adapter.DestroyBuffer(d.centroidsBuf)
	d.adapter.DestroyBuffer(d.labelsBuf)
	d.adapter.DestroyBuffer(d.sumXBuf)
	d.adapter.DestroyBuffer(d.sumYBuf)
	d.adapter.DestroyBuffer(d.countsBuf)
	d.adapter.DestroyBuffer(d.paramsBuf)
	d.adapter.DestroyComputePipeline(d.pipelineAssign)
	d.adapter.DestroyComputePipeline(d.pipelineAccumulate)
	d.adapter.DestroyComputePipeline(d.pipelineDivide)
	d.adapter.DestroyBindGroupLayout(d.layoutAssign)
	d.adapter.DestroyBindGroupLayout(d.layoutAccumulate)
	d.adapter.DestroyBindGroupLayout(d.layoutDivide)
	d.adapter.DestroyShaderModule(d.shaderAssign)
	d.adapter.DestroyShaderModule(d.shaderAccumulate)
	d.adapter.DestroyShaderModule(d.shaderDivide)
}
