package shapes

import "testing"

func TestResolveIdempotent(t *testing.T) {
	inputs := []string{"DNA", "dna", " circle ", "helix", "gibberish", "Star5", "hexagram"}
	for _, in := range inputs {
		r1 := Resolve(in)
		r2 := Resolve(r1)
		if r1 != r2 {
			t.Errorf("Resolve(%q) = %q, but Resolve(%q) = %q (not idempotent)", in, r1, r1, r2)
		}
		if _, ok := registry[r1]; !ok {
			t.Errorf("Resolve(%q) = %q not in canonical set", in, r1)
		}
	}
}

func TestResolveAliasesAndFallback(t *testing.T) {
	cases := map[string]string{
		"circle":    "circle",
		"CIRCLE":    "circle",
		" circle ":  "circle",
		"donut":     "ring",
		"helix":     "spiral",
		"dna":       "spiral",
		"DNA":       "spiral",
		" DNA ":     "spiral",
		"gibberish": DefaultCanonical,
		"":          DefaultCanonical,
	}
	for in, want := range cases {
		if got := Resolve(in); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", in, got, want)
		}
	}
}

// Scenario S3: "DNA", "dna", " DNA ", and "helix" must all resolve to the
// same canonical shape.
func TestResolveDNAAliasesMatchHelix(t *testing.T) {
	want := Resolve("helix")
	for _, in := range []string{"DNA", "dna", " DNA "} {
		if got := Resolve(in); got != want {
			t.Errorf("Resolve(%q) = %q, want %q (same as Resolve(\"helix\"))", in, got, want)
		}
	}
}

func TestResolveLongestPrefix(t *testing.T) {
	// "star5x" isn't a name or alias, but has "star5" as the longest
	// registered prefix.
	if got := Resolve("star5x"); got != "star5" {
		t.Errorf("Resolve(%q) = %q, want %q", "star5x", got, "star5")
	}
}

func TestGenerateProducesNormalizedGrid(t *testing.T) {
	lib := New(64, 64)
	for _, name := range Names() {
		g := lib.Generate(name)
		if g.W != 64 || g.H != 64 || len(g.Data) != 64*64 {
			t.Fatalf("shape %q: wrong grid dims %dx%d (%d values)", name, g.W, g.H, len(g.Data))
		}
		var min, max float32 = 1, 0
		for _, v := range g.Data {
			if v < 0 || v > 1 {
				t.Fatalf("shape %q: value %v out of [0,1]", name, v)
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		if max-min < 1e-6 {
			t.Fatalf("shape %q: grid is flat (min=%v max=%v), expected some density variation", name, min, max)
		}
	}
}

func TestGenerateCachesPerCanonicalName(t *testing.T) {
	lib := New(32, 32)
	g1 := lib.Generate("circle")
	g2 := lib.Generate("circle")
	if &g1.Data[0] != &g2.Data[0] {
		t.Fatal("Generate did not return the cached grid on second call")
	}
}

func TestGenerateUnknownFallsBackToDefault(t *testing.T) {
	lib := New(32, 32)
	g := lib.Generate("not-a-real-shape")
	want := lib.Generate(DefaultCanonical)
	if len(g.Data) != len(want.Data) {
		t.Fatal("unknown shape did not fall back to default grid dimensions")
	}
	for i := range g.Data {
		if g.Data[i] != want.Data[i] {
			t.Fatalf("unknown shape grid differs from default at index %d", i)
		}
	}
}
