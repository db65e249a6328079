// Package gpucore provides the shared GPU abstraction used by every compute
// stage of the particle field: the NCA engine, OT Engine, Physics Engine,
// Splat Engine, and Trail/Decay/Render pass.
//
// # Architecture
//
// The [GPUAdapter] interface abstracts over backend implementations (e.g.
// gogpu/wgpu's HAL) so the same WGSL dispatch code works against any
// conforming backend. Device/adapter bootstrap — enumerating physical
// devices and constructing a concrete GPUAdapter — happens outside this
// module and is out of scope for this package.
//
//	+------------------+   +------------------+   +------------------+
//	|   NCA dispatch   |   |   OT dispatch    |   | Physics dispatch |
//	+--------+---------+   +--------+---------+   +--------+---------+
//	         |                       |                       |
//	         +-----------+-----------+-----------+-----------+
//	                     |
//	              +------v------+
//	              |   gpucore   |
//	              | (GPUAdapter)|
//	              +------+------+
//	                     |
//	              +------v------+
//	              | gogpu/wgpu  |
//	              |  (hal.Device)|
//	              +-------------+
//
// # Resource Management
//
// GPU resources are managed via opaque IDs ([BufferID], [TextureID],
// [ShaderModuleID], etc.). Every Create* method has a matching Destroy*
// method; callers own the resulting ID and must release it explicitly.
//
// # CPU Fallback
//
// Every stage that dispatches through a GPUAdapter also ships a pure-Go CPU
// reference implementation of the same per-stage math. The orchestrator and
// cmd/tofu-demo run those CPU references; nothing in this module switches
// between the GPU and CPU paths at run time.
package gpucore
