package dfiv

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dfiv/linalg"
	"github.com/YuminosukeSato/dfiv/pkg/errors"
)

// FeatureMap is a learned (or fixed) feature extractor: a deterministic
// transform from raw input rows to feature rows. Implementations are opaque
// to the estimator; any training of the map happens outside this module.
type FeatureMap interface {
	// Transform maps raw inputs (n × din) to features (n × dout).
	Transform(X *mat.Dense) (*mat.Dense, error)
}

// IdentityFeatureMap は入力をそのまま特徴量として返す
type IdentityFeatureMap struct{}

// Transform は X をそのまま返す
func (IdentityFeatureMap) Transform(X *mat.Dense) (*mat.Dense, error) {
	if X == nil {
		return nil, errors.NewValueError("IdentityFeatureMap.Transform", "nil input")
	}
	return X, nil
}

// LinearFeatureMap は固定の重み行列による線形な特徴写像。
// 外部で学習されたネットワークの決定的な代役としてテストや例で使う。
type LinearFeatureMap struct {
	W *mat.Dense // (din × dout)
}

// NewLinearFeatureMap は重み行列 W を持つ LinearFeatureMap を作成する
func NewLinearFeatureMap(W *mat.Dense) *LinearFeatureMap {
	return &LinearFeatureMap{W: W}
}

// Transform は X W を計算する
func (m *LinearFeatureMap) Transform(X *mat.Dense) (*mat.Dense, error) {
	if X == nil {
		return nil, errors.NewValueError("LinearFeatureMap.Transform", "nil input")
	}
	if m.W == nil {
		return nil, errors.NewValueError("LinearFeatureMap.Transform", "nil weight matrix")
	}
	return linalg.Predict(X, m.W)
}
