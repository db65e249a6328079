// Command tofu-demo drives the particle-field engine's CPU-reference
// pipeline for a fixed number of frames and writes a PNG snapshot of the
// resulting trail buffer — a headless stand-in for the WebGPU-backed
// render loop described in spec.md §6 ("Display surface").
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/tofuswarm/tofu/internal/config"
	"github.com/tofuswarm/tofu/internal/logging"
	"github.com/tofuswarm/tofu/internal/nca"
	"github.com/tofuswarm/tofu/internal/orchestrator"
	"github.com/tofuswarm/tofu/internal/physics"
	"github.com/tofuswarm/tofu/internal/shapes"
	"github.com/tofuswarm/tofu/internal/splat"
	"github.com/tofuswarm/tofu/internal/trail"
)

func main() {
	var cfg config.Config
	fs := flag.NewFlagSet("tofu-demo", flag.ExitOnError)
	config.RegisterFlags(fs, &cfg)

	var (
		shape  = fs.String("shape", "circle", "initial shape to transition to")
		frames = fs.Int("frames", 240, "number of frames to simulate")
		output = fs.String("output", "tofu-demo.png", "output PNG path")
		seed   = fs.Int64("seed", 1, "wander/sampler RNG seed")
		verbose = fs.Bool("verbose", false, "enable structured log output")
	)
	fs.Parse(os.Args[1:])

	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	weights, err := nca.LoadWeights(cfg.NCAWeights)
	if err != nil {
		log.Fatalf("loading NCA weights: %v", err)
	}
	engine := nca.New(weights, cfg.Steps, float32(cfg.FireRate))

	shapeLib := shapes.New(cfg.WG, cfg.HG)
	orch := orchestrator.New(cfg, shapeLib, engine, *seed)

	if canonical, ok := orch.Submit(*shape); ok {
		log.Printf("transitioning to %q", canonical)
	} else {
		log.Printf("transition to %q rejected", *shape)
	}

	density := splat.NewGrid(cfg.WD, cfg.HD)
	trailBuf := trail.NewBuffer(cfg.WD, cfg.HD)
	renderParams := trail.DefaultRenderParams()
	renderParams.MaxVel = float32(cfg.MaxVel)
	renderParams.UseBloom = cfg.UseBloom

	var bloomBuf trail.Buffer
	if cfg.UseBloom {
		bloomBuf = trail.NewBuffer(cfg.WD, cfg.HD)
	}

	nowMs := 0.0
	for i := 0; i < *frames; i++ {
		nowMs += 1000.0 / 60.0
		orch.Tick(nowMs)
		orch.TickFPS(nowMs)

		density.Clear()
		positions := orch.Positions()
		velocities := orch.Velocities()
		for a := range positions {
			splat.Splat(density, toSplatVec2(positions[a]), toSplatVec2(velocities[a]), float32(cfg.MaxVel))
		}

		// trailBuf is never cleared across frames — only Decay ever writes it.
		trail.Decay(trailBuf, density.Density, float32(cfg.Decay))

		if cfg.UseBloom {
			trail.Bloom(trailBuf, 2.0, bloomBuf)
		}
	}

	fb := trail.NewFramebuffer(cfg.WD, cfg.HD)
	densityBuf := trail.Buffer{W: density.W, H: density.H, Data: toFloatDensity(density)}
	var bloomPtr *trail.Buffer
	if cfg.UseBloom {
		bloomPtr = &bloomBuf
	}
	trail.Render(fb, trailBuf, densityBuf, density.Vel, bloomPtr, renderParams)

	if err := fb.SavePNG(*output); err != nil {
		log.Fatalf("saving PNG: %v", err)
	}
	log.Printf("wrote %s (%dx%d, %d frames, status=%q phase=%q fps=%.1f)",
		*output, cfg.WD, cfg.HD, *frames, orch.Status(), orch.Phase(), orch.FPS())
}

func toSplatVec2(v physics.Vec2) splat.Vec2 {
	return splat.Vec2{X: v.X, Y: v.Y}
}

func toFloatDensity(g splat.Grid) []float32 {
	out := make([]float32, len(g.Density))
	for i, d := range g.Density {
		out[i] = float32(d)
	}
	return out
}
