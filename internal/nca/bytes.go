//go:build !nogpu

package nca

import (
	"encoding/binary"
	"math"
)

func float32sToBytes(vs []float32) []byte {
	le := binary.LittleEndian
	buf := make([]byte, len(vs)*4)
	for i, v := range vs {
		le.PutUint32(buf[i*4:i*4+4], floatBits(v))
	}
	return buf
}

func bytesToFloat32s(data []byte) []float32 {
	le := binary.LittleEndian
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = bitsToFloat(le.Uint32(data[i*4 : i*4+4]))
	}
	return out
}

func u32ToBytes(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

// paramsToBytes serializes the Params uniform struct (w, h, step, padding),
// matching the WGSL Params layout in mlp_step.wgsl.
func paramsToBytes(w, h, step uint32) []byte {
	buf := make([]byte, 16)
	le := binary.LittleEndian
	le.PutUint32(buf[0:4], w)
	le.PutUint32(buf[4:8], h)
	le.PutUint32(buf[8:12], step)
	return buf
}

func floatBits(v float32) uint32   { return math.Float32bits(v) }
func bitsToFloat(v uint32) float32 { return math.Float32frombits(v) }
