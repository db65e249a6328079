package ot

import (
	"encoding/binary"
	"math"
)

func floatBits(v float32) uint32   { return math.Float32bits(v) }
func bitsToFloat(v uint32) float32 { return math.Float32frombits(v) }

// pointsToBytes serializes points as consecutive little-endian vec2<f32>
// pairs, matching the WGSL array<vec2<f32>> layout used by the k-means
// shaders.
func pointsToBytes(points []Point) []byte {
	le := binary.LittleEndian
	buf := make([]byte, len(points)*8)
	for i, p := range points {
		le.PutUint32(buf[i*8:i*8+4], floatBits(p.X))
		le.PutUint32(buf[i*8+4:i*8+8], floatBits(p.Y))
	}
	return buf
}

// bytesToPoints is the inverse of pointsToBytes.
func bytesToPoints(data []byte) []Point {
	le := binary.LittleEndian
	out := make([]Point, len(data)/8)
	for i := range out {
		out[i] = Point{
			X: bitsToFloat(le.Uint32(data[i*8 : i*8+4])),
			Y: bitsToFloat(le.Uint32(data[i*8+4 : i*8+8])),
		}
	}
	return out
}

// u32ToBytes serializes a single little-endian u32, used for the Params
// uniform buffer.
func u32ToBytes(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

// bytesToU32AsInt reinterprets a little-endian array<u32> buffer as a slice
// of int labels.
func bytesToU32AsInt(data []byte) []int {
	le := binary.LittleEndian
	out := make([]int, len(data)/4)
	for i := range out {
		out[i] = int(le.Uint32(data[i*4 : i*4+4]))
	}
	return out
}
