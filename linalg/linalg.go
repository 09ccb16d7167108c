// Package linalg は特徴量行列に対する閉形式の線形回帰プリミティブを提供する。
//
// DFIV推定器の協力者となる4つの演算を実装する:
// リッジ回帰の閉形式解（FitRidge）、線形予測（Predict）、
// サンプルごとの外積の平坦化（OuterProd）、定数列の付加（AddConstCol）。
package linalg

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dfiv/core/parallel"
	"github.com/YuminosukeSato/dfiv/pkg/errors"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// FitRidge はリッジ回帰の正規方程式を解く
// W = (X^T X + λI)^(-1) X^T Y を閉形式で計算する
//
// X は計画行列 (n × d)、Y はターゲット (n × k)、lam は L2 ペナルティ。
// グラム行列が特異な場合は ErrSingularMatrix をラップした ModelError を返す。
func FitRidge(X, Y mat.Matrix, lam float64) (*mat.Dense, error) {
	n, d := X.Dims()
	ny, k := Y.Dims()

	if n == 0 || d == 0 {
		return nil, errors.NewModelError("linalg.FitRidge", "empty design matrix", errors.ErrEmptyData)
	}
	if ny != n {
		return nil, errors.NewDimensionError("linalg.FitRidge", n, ny, 0)
	}
	if lam < 0 {
		return nil, errors.NewModelError("linalg.FitRidge", "ridge penalty must be non-negative", errors.ErrNegativePenalty)
	}

	// グラム行列 X^T X を計算し、対角に λ を加える
	var xt mat.Dense
	xt.CloneFrom(X.T())

	var gram mat.Dense
	gram.Mul(&xt, X)
	if lam > 0 {
		for i := 0; i < d; i++ {
			gram.Set(i, i, gram.At(i, i)+lam)
		}
	}

	var xty mat.Dense
	xty.Mul(&xt, Y)

	// 正規方程式 (X^T X + λI) W = X^T Y を解く
	var w mat.Dense
	if err := w.Solve(&gram, &xty); err != nil {
		return nil, errors.NewModelError("linalg.FitRidge", "failed to solve normal equations", errors.ErrSingularMatrix)
	}

	if err := errors.CheckMatrix("linalg.FitRidge", &w, d, k); err != nil {
		return nil, err
	}

	return &w, nil
}

// Predict は線形写像 X W を計算する
func Predict(X mat.Matrix, W mat.Matrix) (*mat.Dense, error) {
	_, d := X.Dims()
	wr, _ := W.Dims()

	if d != wr {
		return nil, errors.NewDimensionError("linalg.Predict", wr, d, 1)
	}

	var out mat.Dense
	out.Mul(X, W)
	return &out, nil
}

// AddConstCol は特徴量行列の末尾に 1 の定数列（切片項）を付加した
// 新しい行列を返す。入力は変更しない。
func AddConstCol(X mat.Matrix) *mat.Dense {
	n, d := X.Dims()
	out := mat.NewDense(n, d+1, nil)

	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < d; j++ {
				out.Set(i, j, X.At(i, j))
			}
			out.Set(i, d, 1.0) // 切片項
		}
	})

	return out
}

// OuterProd は行数の等しい2つの特徴量行列 A (n × da), B (n × db) について、
// サンプルごとの外積 A_i ⊗ B_i を 1 行に平坦化した行列 (n × da*db) を返す。
// 外積の要素 (j, k) は列 j*db + k に配置される。
func OuterProd(A, B mat.Matrix) (*mat.Dense, error) {
	n, da := A.Dims()
	nb, db := B.Dims()

	if nb != n {
		return nil, errors.NewDimensionError("linalg.OuterProd", n, nb, 0)
	}
	if da == 0 || db == 0 {
		return nil, errors.NewModelError("linalg.OuterProd", "empty feature matrix", errors.ErrEmptyData)
	}

	out := mat.NewDense(n, da*db, nil)

	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < da; j++ {
				a := A.At(i, j)
				for k := 0; k < db; k++ {
					out.Set(i, j*db+k, a*B.At(i, k))
				}
			}
		}
	})

	return out, nil
}

// SquaredFrobNorm はフロベニウスノルムの二乗 ||M||_F^2 を返す
func SquaredFrobNorm(M mat.Matrix) float64 {
	norm := mat.Norm(M, 2)
	return norm * norm
}
