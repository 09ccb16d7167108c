package errors

import (
	"strings"
	"testing"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("Regressor", "Predict")

	var notFitted *NotFittedError
	if !As(err, &notFitted) {
		t.Fatal("expected NotFittedError")
	}

	msg := err.Error()
	if !strings.Contains(msg, "Regressor") || !strings.Contains(msg, "Predict()") {
		t.Errorf("message should name the model and method: %q", msg)
	}
}

func TestDimensionError(t *testing.T) {
	tests := []struct {
		name     string
		axis     int
		wantWord string
	}{
		{name: "rows", axis: 0, wantWord: "rows"},
		{name: "features", axis: 1, wantWord: "features"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDimensionError("Fit", 10, 7, tt.axis)
			if !strings.Contains(err.Error(), tt.wantWord) {
				t.Errorf("expected axis name %q in %q", tt.wantWord, err.Error())
			}

			var dimErr *DimensionError
			if !As(err, &dimErr) {
				t.Fatal("expected DimensionError")
			}
			if dimErr.Expected != 10 || dimErr.Got != 7 {
				t.Errorf("fields not preserved: %+v", dimErr)
			}
		})
	}
}

func TestModelError_Unwrap(t *testing.T) {
	err := NewModelError("linalg.FitRidge", "failed to solve normal equations", ErrSingularMatrix)

	if !Is(err, ErrSingularMatrix) {
		t.Error("ModelError should unwrap to its sentinel cause")
	}

	msg := err.Error()
	if !strings.Contains(msg, "linalg.FitRidge") || !strings.Contains(msg, "singular") {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestNumericalInstabilityError_TruncatesValues(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	err := NewNumericalInstabilityError("ridge_solve", values)

	msg := err.Error()
	if !strings.Contains(msg, "...") {
		t.Errorf("long value lists should be truncated: %q", msg)
	}
	if !strings.Contains(msg, "ridge_solve") {
		t.Errorf("operation name missing: %q", msg)
	}
}

func TestWrap(t *testing.T) {
	base := New("boom")
	wrapped := Wrap(base, "context")

	if !Is(wrapped, base) {
		t.Error("wrapped error should match its base")
	}
	if !strings.Contains(wrapped.Error(), "context") {
		t.Errorf("wrap message missing: %q", wrapped.Error())
	}
}
