// Package shaderutil compiles WGSL compute shaders and performs the
// shader-constant injection described for every compute kernel: textual
// placeholders of the form %%NAME%% are substituted with typed literals
// before the source is handed to naga.
package shaderutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/naga"
)

// Constants holds the values substituted into a shader template before
// compilation. U32 values render as "123u" literals; F32 values render as
// bare float literals ("0.88").
type Constants struct {
	U32 map[string]uint32
	F32 map[string]float32
}

// Inject replaces every %%NAME%% placeholder in src with its typed literal.
// A placeholder with no matching entry in either map is left untouched so
// that a missing constant fails loudly at shader-compile time rather than
// silently producing a zero.
func Inject(src string, c Constants) string {
	out := src
	for name, v := range c.U32 {
		out = strings.ReplaceAll(out, "%%"+name+"%%", strconv.FormatUint(uint64(v), 10)+"u")
	}
	for name, v := range c.F32 {
		out = strings.ReplaceAll(out, "%%"+name+"%%", formatF32(v))
	}
	return out
}

func formatF32(v float32) string {
	s := strconv.FormatFloat(float64(v), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// CompileToSPIRV compiles WGSL source to SPIR-V, returned as little-endian
// uint32 words, matching the layout gpucore.GPUAdapter.CreateShaderModule
// expects.
func CompileToSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("shaderutil: compile failed: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("shaderutil: spirv byte length %d not a multiple of 4", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
