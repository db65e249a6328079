package nca

import (
	"fmt"
	"os"

	"github.com/tofuswarm/tofu/internal/jsonutil"
	"github.com/tofuswarm/tofu/internal/logging"
)

// hiddenDim is H in §4.3.1: the MLP hidden layer width.
const hiddenDim = 64

// perceptFeatures is the 48 perception features (16 channels × 3 kernels)
// plus the 8 goal features: the W1 input width.
const perceptFeatures = 48
const goalFeatures = 8
const inputDim = perceptFeatures + goalFeatures // 56
const stateDim = 16

// Weights holds the flattened MLP parameters for the NCA's MLP back-end.
// Shapes: W1 is H×56, b1 is H, W2 is 16×H, b2 is 16.
type Weights struct {
	W1 []float32 // H*56, row-major
	B1 []float32 // H
	W2 []float32 // 16*H, row-major
	B2 []float32 // 16
}

type weightsFile struct {
	W1 []float32 `json:"W1"`
	B1 []float32 `json:"b1"`
	W2 []float32 `json:"W2"`
	B2 []float32 `json:"b2"`
}

// LoadWeights reads and validates a weight file at path. Per §4.3.3, missing
// or malformed data is never an error to the caller — any failure logs a
// warning and returns (nil, nil) so the engine falls back to RDS.
func LoadWeights(path string) (*Weights, error) {
	f, err := os.Open(path)
	if err != nil {
		logging.Logger().Warn("nca: weight file unavailable, falling back to RDS", "path", path, "error", err)
		return nil, nil
	}
	defer f.Close()

	var wf weightsFile
	if err := jsonutil.NewDecoder(f).Decode(&wf); err != nil {
		logging.Logger().Warn("nca: weight file malformed, falling back to RDS", "path", path, "error", err)
		return nil, nil
	}

	w := &Weights{W1: wf.W1, B1: wf.B1, W2: wf.W2, B2: wf.B2}
	if err := w.validate(); err != nil {
		logging.Logger().Warn("nca: weight shapes invalid, falling back to RDS", "path", path, "error", err)
		return nil, nil
	}
	return w, nil
}

func (w *Weights) validate() error {
	if len(w.W1) != hiddenDim*inputDim {
		return fmt.Errorf("nca: W1 has %d elements, want %d (%d×%d)", len(w.W1), hiddenDim*inputDim, hiddenDim, inputDim)
	}
	if len(w.B1) != hiddenDim {
		return fmt.Errorf("nca: b1 has %d elements, want %d", len(w.B1), hiddenDim)
	}
	if len(w.W2) != stateDim*hiddenDim {
		return fmt.Errorf("nca: W2 has %d elements, want %d (%d×%d)", len(w.W2), stateDim*hiddenDim, stateDim, hiddenDim)
	}
	if len(w.B2) != stateDim {
		return fmt.Errorf("nca: b2 has %d elements, want %d", len(w.B2), stateDim)
	}
	return nil
}
