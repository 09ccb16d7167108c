package dfiv

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dfiv/pkg/errors"
)

func randDense(rng *rand.Rand, r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return mat.NewDense(r, c, data)
}

func TestFit2SLS_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	treatment1 := randDense(rng, 30, 2)
	instrumental1 := randDense(rng, 30, 3)
	instrumental2 := randDense(rng, 25, 3)
	covariate2 := randDense(rng, 25, 2)
	outcome2 := randDense(rng, 25, 1)

	first, err := Fit2SLS(treatment1, instrumental1, instrumental2, covariate2, outcome2, 0.1, 0.1, true, true)
	if err != nil {
		t.Fatalf("first fit failed: %v", err)
	}

	second, err := Fit2SLS(treatment1, instrumental1, instrumental2, covariate2, outcome2, 0.1, 0.1, true, true)
	if err != nil {
		t.Fatalf("second fit failed: %v", err)
	}

	if !mat.Equal(first.Stage1Weight, second.Stage1Weight) {
		t.Error("stage-1 weights differ across identical calls")
	}
	if !mat.Equal(first.Stage2Weight, second.Stage2Weight) {
		t.Error("stage-2 weights differ across identical calls")
	}
	if !mat.Equal(first.PredictedTreatmentFeature, second.PredictedTreatmentFeature) {
		t.Error("predicted treatment features differ across identical calls")
	}
	if first.Stage2Loss != second.Stage2Loss {
		t.Errorf("stage-2 loss differs: %v vs %v", first.Stage2Loss, second.Stage2Loss)
	}
}

func TestFit2SLS_Stage2Shrinkage(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	treatment1 := randDense(rng, 40, 2)
	instrumental1 := randDense(rng, 40, 2)
	instrumental2 := randDense(rng, 40, 2)
	outcome2 := randDense(rng, 40, 1)

	prevNorm := math.Inf(1)
	for _, lam2 := range []float64{0.01, 1, 100, 1e7} {
		res, err := Fit2SLS(treatment1, instrumental1, instrumental2, nil, outcome2, 0.1, lam2, true, true)
		if err != nil {
			t.Fatalf("fit with lam2=%v failed: %v", lam2, err)
		}

		norm := mat.Norm(res.Stage2Weight, 2)
		if norm >= prevNorm {
			t.Errorf("stage-2 weight norm should shrink as lam2 grows: lam2=%v norm=%v prev=%v", lam2, norm, prevNorm)
		}
		prevNorm = norm
	}

	if prevNorm > 1e-3 {
		t.Errorf("stage-2 weights should vanish under huge penalty, got norm %v", prevNorm)
	}
}

func TestFit2SLS_LossDecomposition(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	treatment1 := randDense(rng, 50, 1)
	instrumental1 := randDense(rng, 50, 1)
	instrumental2 := randDense(rng, 50, 1)
	outcome2 := randDense(rng, 50, 1)

	lam2 := 0.5
	res, err := Fit2SLS(treatment1, instrumental1, instrumental2, nil, outcome2, 0.1, lam2, true, true)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	// Recompute the objective from the returned artifacts.
	feature := AugmentStage1Feature(instrumental2, true)
	var pred mat.Dense
	pred.Mul(feature, res.Stage1Weight)
	if !mat.EqualApprox(&pred, res.PredictedTreatmentFeature, 1e-12) {
		t.Error("predicted treatment features are not the stage-1 projection of the second split")
	}

	stage2Feature, err := AugmentStage2Feature(res.PredictedTreatmentFeature, nil, true)
	if err != nil {
		t.Fatalf("augment failed: %v", err)
	}

	var fit mat.Dense
	fit.Mul(stage2Feature, res.Stage2Weight)

	var resid mat.Dense
	resid.Sub(outcome2, &fit)

	residNorm := mat.Norm(&resid, 2)
	weightNorm := mat.Norm(res.Stage2Weight, 2)
	want := residNorm*residNorm + lam2*weightNorm*weightNorm

	if math.Abs(res.Stage2Loss-want) > 1e-9 {
		t.Errorf("stage-2 loss mismatch: got %v, recomputed %v", res.Stage2Loss, want)
	}
}

func TestFit2SLS_RowMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	treatment1 := randDense(rng, 10, 1)
	instrumental1 := randDense(rng, 9, 1) // mismatched first split
	instrumental2 := randDense(rng, 8, 1)
	outcome2 := randDense(rng, 8, 1)

	_, err := Fit2SLS(treatment1, instrumental1, instrumental2, nil, outcome2, 0.1, 0.1, true, true)
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("expected DimensionError, got %v", err)
	}
}

func TestFit2SLS_SingularPropagates(t *testing.T) {
	// Zero instruments with no regularizer make the stage-1 Gram singular.
	treatment1 := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	instrumental1 := mat.NewDense(4, 1, nil)
	instrumental2 := mat.NewDense(4, 1, nil)
	outcome2 := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	_, err := Fit2SLS(treatment1, instrumental1, instrumental2, nil, outcome2, 0, 0, false, false)
	if !errors.Is(err, errors.ErrSingularMatrix) {
		t.Errorf("expected ErrSingularMatrix, got %v", err)
	}
}
