package dfiv

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dfiv/linalg"
	"github.com/YuminosukeSato/dfiv/pkg/errors"
)

// Fit2SLSResult is an immutable snapshot of one two-stage fit: both stage
// weights, the stage-1 projection of the second split, and the regularized
// stage-2 training objective. The loss is the signal a penalty search over
// (lam1, lam2) would minimize.
type Fit2SLSResult struct {
	Stage1Weight              *mat.Dense
	PredictedTreatmentFeature *mat.Dense
	Stage2Weight              *mat.Dense
	Stage2Loss                float64
}

// Fit2SLS は2段階最小二乗のリッジ回帰を閉形式で解く純粋関数。
//
// 第1分割の処置特徴量を（切片付加後の）操作変数特徴量に回帰して第1段階の
// 重みを求め、その重みで第2分割の処置特徴量を予測する。予測処置特徴量と
// 共変量特徴量（nil 可）から第2段階の計画行列を構成し、第2分割の
// アウトカムに回帰する。第2段階の損失は
// ||Y - XW||² + lam2 * ||W||² （正則化付き学習目的関数の値）。
//
// グラム行列が特異な場合は解けず、エラーがそのまま呼び出し元へ伝播する。
func Fit2SLS(
	treatment1stFeature *mat.Dense,
	instrumental1stFeature *mat.Dense,
	instrumental2ndFeature *mat.Dense,
	covariate2ndFeature *mat.Dense,
	outcome2nd *mat.Dense,
	lam1, lam2 float64,
	addStage1Intercept, addStage2Intercept bool,
) (*Fit2SLSResult, error) {
	const op = "dfiv.Fit2SLS"

	n1, _ := treatment1stFeature.Dims()
	if r, _ := instrumental1stFeature.Dims(); r != n1 {
		return nil, errors.NewDimensionError(op, n1, r, 0)
	}

	n2, _ := instrumental2ndFeature.Dims()
	if r, _ := outcome2nd.Dims(); r != n2 {
		return nil, errors.NewDimensionError(op, n2, r, 0)
	}
	if covariate2ndFeature != nil {
		if r, _ := covariate2ndFeature.Dims(); r != n2 {
			return nil, errors.NewDimensionError(op, n2, r, 0)
		}
	}

	// stage1
	feature := AugmentStage1Feature(instrumental1stFeature, addStage1Intercept)
	stage1Weight, err := linalg.FitRidge(feature, treatment1stFeature, lam1)
	if err != nil {
		return nil, err
	}

	// predicting for stage 2
	feature = AugmentStage1Feature(instrumental2ndFeature, addStage1Intercept)
	predictedTreatmentFeature, err := linalg.Predict(feature, stage1Weight)
	if err != nil {
		return nil, err
	}

	// stage2
	feature, err = AugmentStage2Feature(predictedTreatmentFeature, covariate2ndFeature, addStage2Intercept)
	if err != nil {
		return nil, err
	}

	stage2Weight, err := linalg.FitRidge(feature, outcome2nd, lam2)
	if err != nil {
		return nil, err
	}

	pred, err := linalg.Predict(feature, stage2Weight)
	if err != nil {
		return nil, err
	}

	var resid mat.Dense
	resid.Sub(outcome2nd, pred)
	stage2Loss := linalg.SquaredFrobNorm(&resid) + lam2*linalg.SquaredFrobNorm(stage2Weight)

	if err := errors.CheckScalar(op+".stage2_loss", stage2Loss); err != nil {
		return nil, err
	}

	return &Fit2SLSResult{
		Stage1Weight:              stage1Weight,
		PredictedTreatmentFeature: predictedTreatmentFeature,
		Stage2Weight:              stage2Weight,
		Stage2Loss:                stage2Loss,
	}, nil
}
