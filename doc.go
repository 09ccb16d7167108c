// Package dfiv implements Deep Feature Instrumental Variable (DFIV)
// regression: a two-stage least-squares estimator whose treatment,
// instrument, and covariate feature maps are supplied externally as opaque
// transforms instead of fixed basis functions.
//
// The estimator performs one closed-form fit. Stage 1 ridge-regresses
// first-split treatment features on (optionally intercept-augmented)
// instrument features; the learned weight projects second-split instrument
// features into predicted treatment features. Stage 2 combines those
// predictions with optional covariate features (per-sample outer product,
// flattened) and ridge-regresses the second-split outcomes on the result.
// Prediction at inference time uses raw treatment features directly; the
// stage-1 projection only serves to remove endogeneity bias during fitting.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/dfiv"
//	    "github.com/YuminosukeSato/dfiv/dataset"
//	)
//
//	func main() {
//	    reg := dfiv.NewRegressor(
//	        dfiv.IdentityFeatureMap{}, // treatment features
//	        dfiv.IdentityFeatureMap{}, // instrument features
//	    )
//
//	    if err := reg.Fit(train1st, train2nd, 0.1, 0.1); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    mse, err := reg.Evaluate(test)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("out-of-sample MSE:", mse)
//	}
//
// # Packages
//
// The module is organized into several packages:
//
//   - dfiv (this package): the two-stage estimator
//   - linalg: closed-form ridge solve, linear prediction, outer product,
//     intercept-column augmentation
//   - dataset: slice-backed and matrix-backed train/test containers
//   - metrics: evaluation metrics (MSE, RMSE, R²)
//   - config: YAML experiment configuration and penalty grids
//   - core/model: estimator state machine
//   - core/parallel: CPU-parallel processing utilities
//
// # Concurrency
//
// A Regressor is not safe for concurrent use: Fit mutates the two weight
// fields. Serialize access per instance, or use one instance per fit.
package dfiv
