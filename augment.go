package dfiv

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dfiv/linalg"
)

// AugmentStage1Feature は第1段階の計画行列を構成する。
// addIntercept が真なら操作変数特徴量に切片項（定数列）を付加し、
// 偽なら入力をそのまま返す。純粋関数で入力は変更しない。
func AugmentStage1Feature(instrumentalFeature *mat.Dense, addIntercept bool) *mat.Dense {
	feature := instrumentalFeature
	if addIntercept {
		feature = linalg.AddConstCol(feature)
	}
	return feature
}

// AugmentStage2Feature は第2段階の計画行列を構成する。
//
// 予測処置特徴量に（addIntercept が真なら）切片項を付加し、共変量特徴量が
// 与えられた場合は共変量側にも同様に切片項を付加したうえで、両者の
// サンプルごとの外積を1行に平坦化した交差特徴量を返す。
// covariateFeature が nil のときは切片付加のみの処置特徴量を返す。
func AugmentStage2Feature(predictedTreatmentFeature, covariateFeature *mat.Dense, addIntercept bool) (*mat.Dense, error) {
	feature := predictedTreatmentFeature
	if addIntercept {
		feature = linalg.AddConstCol(feature)
	}

	if covariateFeature != nil {
		covariate := covariateFeature
		if addIntercept {
			covariate = linalg.AddConstCol(covariate)
		}
		return linalg.OuterProd(feature, covariate)
	}

	return feature, nil
}
