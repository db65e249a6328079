// Package config defines the CLI/config surface the host must provide:
// every size constant that shaders bake in as compile-time literals, and
// every tunable of the physics/trail/OT pipeline.
package config

import (
	"flag"
	"fmt"
	"math"
)

// Config holds the five sizing constants shaders are compiled against plus
// every runtime tunable. Changing N, WG/HG, WD/HD or K requires recompiling
// every shader that bakes them in as %%PLACEHOLDER%% literals.
//
// Tunables are stored as float64 for convenient flag binding; call F32 on a
// field when constructing a shaderutil.Constants map.
type Config struct {
	N int // atom count

	WG, HG int // shape/NCA grid size
	WD, HD int // display accumulator grid size
	K      int // OT centroid count

	ITER  int // k-means iterations
	Steps int // NCA rollout steps

	MorphDuration float64 // seconds
	HoldDuration  float64 // seconds
	Decay         float64 // trail decay factor, (0,1)
	MaxVel        float64 // wander speed clamp
	Bound         float64 // wander wall radius
	FireRate      float64 // NCA stochastic update fraction

	Scale      int32 // k-means fixed-point multiplier
	UseBloom   bool
	NCAWeights string // path to JSON weight file; "" disables MLP back-end
}

// Default returns the configuration recommended by the reference defaults.
func Default() Config {
	return Config{
		N:             1_500_000,
		WG:            128,
		HG:            128,
		WD:            2560,
		HD:            1440,
		K:             512,
		ITER:          6,
		Steps:         64,
		MorphDuration: 2.0,
		HoldDuration:  3.5,
		Decay:         0.90,
		MaxVel:        0.55,
		Bound:         0.92,
		FireRate:      0.5,
		Scale:         1024,
		UseBloom:      true,
	}
}

// RegisterFlags binds every Config field to a flag.FlagSet, mirroring the
// ggdemo CLI's flag.Int/flag.String idiom. Call fs.Parse and then read cfg.
func RegisterFlags(fs *flag.FlagSet, cfg *Config) {
	*cfg = Default()
	fs.IntVar(&cfg.N, "n", cfg.N, "atom count")
	fs.IntVar(&cfg.WG, "grid-w", cfg.WG, "shape/NCA grid width")
	fs.IntVar(&cfg.HG, "grid-h", cfg.HG, "shape/NCA grid height")
	fs.IntVar(&cfg.WD, "display-w", cfg.WD, "display accumulator width")
	fs.IntVar(&cfg.HD, "display-h", cfg.HD, "display accumulator height")
	fs.IntVar(&cfg.K, "k", cfg.K, "OT centroid count")
	fs.IntVar(&cfg.ITER, "iter", cfg.ITER, "k-means iterations")
	fs.IntVar(&cfg.Steps, "steps", cfg.Steps, "NCA rollout steps")
	fs.Float64Var(&cfg.MorphDuration, "morph-duration", cfg.MorphDuration, "morph duration in seconds")
	fs.Float64Var(&cfg.HoldDuration, "hold-duration", cfg.HoldDuration, "hold duration in seconds")
	fs.Float64Var(&cfg.Decay, "decay", cfg.Decay, "trail decay factor")
	fs.Float64Var(&cfg.MaxVel, "max-vel", cfg.MaxVel, "wander speed clamp")
	fs.Float64Var(&cfg.Bound, "bound", cfg.Bound, "wander wall radius")
	fs.Float64Var(&cfg.FireRate, "fire-rate", cfg.FireRate, "NCA stochastic fire rate")
	fs.BoolVar(&cfg.UseBloom, "bloom", cfg.UseBloom, "enable bloom pass")
	fs.StringVar(&cfg.NCAWeights, "nca-weights", "", "path to NCA weight JSON; empty disables the MLP back-end")
}

// Validate checks the number-hygiene rule from the design notes: the
// fixed-point k-means accumulator must not overflow a signed 32-bit sum.
// maxCoord is the largest |position| component the pipeline can produce
// (1.0 in NDC).
func (c Config) Validate() error {
	if c.N <= 0 {
		return fmt.Errorf("config: N must be positive, got %d", c.N)
	}
	if c.K <= 0 || c.K > c.N {
		return fmt.Errorf("config: K must be in (0, N], got K=%d N=%d", c.K, c.N)
	}
	if c.WG <= 0 || c.HG <= 0 || c.WD <= 0 || c.HD <= 0 {
		return fmt.Errorf("config: grid dimensions must be positive")
	}
	if c.Decay <= 0 || c.Decay >= 1 {
		return fmt.Errorf("config: decay must be in (0,1), got %v", c.Decay)
	}
	const maxCoord = 1.0
	bound := float64(c.N) * float64(c.Scale) * maxCoord
	if bound > math.MaxInt32 {
		return fmt.Errorf("config: N*SCALE*maxCoord = %.0f overflows int32 (limit %d); lower SCALE or N", bound, int32(math.MaxInt32))
	}
	return nil
}
