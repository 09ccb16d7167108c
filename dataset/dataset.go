// Package dataset は学習・評価データのコンテナを提供する。
//
// スライスで保持する TrainDataSet / TestDataSet と、gonum の行列で保持する
// TrainDataMatrix / TestDataMatrix の2系統があり、推定器の入口で前者から
// 後者へ変換される。共変量（Covariate）は省略可能で、nil がその不在を表す。
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dfiv/pkg/errors"
)

// TrainDataSet は学習用データの1分割をスライス形式で保持する。
// Covariate は共変量が存在しない場合 nil。
type TrainDataSet struct {
	Treatment    [][]float64
	Instrumental [][]float64
	Covariate    [][]float64
	Outcome      [][]float64
}

// TestDataSet は評価用データをスライス形式で保持する。
// Structural は交絡の影響を受けない構造的アウトカム（評価の正解値）。
type TestDataSet struct {
	Treatment  [][]float64
	Covariate  [][]float64
	Structural [][]float64
}

// TrainDataMatrix は TrainDataSet の行列表現
type TrainDataMatrix struct {
	Treatment    *mat.Dense
	Instrumental *mat.Dense
	Covariate    *mat.Dense // nil の場合あり
	Outcome      *mat.Dense
}

// TestDataMatrix は TestDataSet の行列表現
type TestDataMatrix struct {
	Treatment  *mat.Dense
	Covariate  *mat.Dense // nil の場合あり
	Structural *mat.Dense
}

// DenseFromRows は行スライスを *mat.Dense に変換する。
// 空データや長さの揃っていない行はエラーになる。
func DenseFromRows(op string, rows [][]float64) (*mat.Dense, error) {
	n := len(rows)
	if n == 0 {
		return nil, errors.NewModelError(op, "no rows", errors.ErrEmptyData)
	}

	d := len(rows[0])
	if d == 0 {
		return nil, errors.NewModelError(op, "empty row", errors.ErrEmptyData)
	}

	data := make([]float64, 0, n*d)
	for _, row := range rows {
		if len(row) != d {
			return nil, errors.NewDimensionError(op, d, len(row), 1)
		}
		data = append(data, row...)
	}

	return mat.NewDense(n, d, data), nil
}

// NewTrainDataMatrix は TrainDataSet を行列表現に変換する。
// すべてのフィールドの行数が一致していることを検証する。
func NewTrainDataMatrix(ds *TrainDataSet) (*TrainDataMatrix, error) {
	const op = "dataset.NewTrainDataMatrix"

	treatment, err := DenseFromRows(op+".treatment", ds.Treatment)
	if err != nil {
		return nil, err
	}

	instrumental, err := DenseFromRows(op+".instrumental", ds.Instrumental)
	if err != nil {
		return nil, err
	}

	outcome, err := DenseFromRows(op+".outcome", ds.Outcome)
	if err != nil {
		return nil, err
	}

	var covariate *mat.Dense
	if ds.Covariate != nil {
		covariate, err = DenseFromRows(op+".covariate", ds.Covariate)
		if err != nil {
			return nil, err
		}
	}

	n, _ := treatment.Dims()
	for _, m := range []*mat.Dense{instrumental, outcome, covariate} {
		if m == nil {
			continue
		}
		if r, _ := m.Dims(); r != n {
			return nil, errors.NewDimensionError(op, n, r, 0)
		}
	}

	return &TrainDataMatrix{
		Treatment:    treatment,
		Instrumental: instrumental,
		Covariate:    covariate,
		Outcome:      outcome,
	}, nil
}

// NewTestDataMatrix は TestDataSet を行列表現に変換する
func NewTestDataMatrix(ds *TestDataSet) (*TestDataMatrix, error) {
	const op = "dataset.NewTestDataMatrix"

	treatment, err := DenseFromRows(op+".treatment", ds.Treatment)
	if err != nil {
		return nil, err
	}

	structural, err := DenseFromRows(op+".structural", ds.Structural)
	if err != nil {
		return nil, err
	}

	var covariate *mat.Dense
	if ds.Covariate != nil {
		covariate, err = DenseFromRows(op+".covariate", ds.Covariate)
		if err != nil {
			return nil, err
		}
	}

	n, _ := treatment.Dims()
	for _, m := range []*mat.Dense{structural, covariate} {
		if m == nil {
			continue
		}
		if r, _ := m.Dims(); r != n {
			return nil, errors.NewDimensionError(op, n, r, 0)
		}
	}

	return &TestDataMatrix{
		Treatment:  treatment,
		Covariate:  covariate,
		Structural: structural,
	}, nil
}
