package errors

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestCheckScalar(t *testing.T) {
	if err := CheckScalar("loss", 1.5); err != nil {
		t.Errorf("finite value should pass: %v", err)
	}

	if err := CheckScalar("loss", math.NaN()); err == nil {
		t.Error("NaN must be detected")
	}

	if err := CheckScalar("loss", math.Inf(1)); err == nil {
		t.Error("Inf must be detected")
	}
}

func TestCheckMatrix(t *testing.T) {
	ok := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if err := CheckMatrix("weights", ok, 2, 2); err != nil {
		t.Errorf("finite matrix should pass: %v", err)
	}

	bad := mat.NewDense(2, 2, []float64{1, math.NaN(), 3, 4})
	err := CheckMatrix("weights", bad, 2, 2)
	if err == nil {
		t.Fatal("NaN in matrix must be detected")
	}

	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if numErr.Operation != "weights" {
		t.Errorf("operation not preserved: %q", numErr.Operation)
	}
}
