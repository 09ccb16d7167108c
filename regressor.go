package dfiv

import (
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/dfiv/core/model"
	"github.com/YuminosukeSato/dfiv/dataset"
	"github.com/YuminosukeSato/dfiv/linalg"
	"github.com/YuminosukeSato/dfiv/metrics"
	"github.com/YuminosukeSato/dfiv/pkg/errors"
)

// Regressor is the DFIV two-stage least-squares estimator.
//
// The treatment and instrument feature maps are required; the covariate map
// is optional and its presence is fixed at construction. Whether a fit or
// prediction call carries covariate data must match that choice, and is
// validated on every call.
//
// Not safe for concurrent use: Fit overwrites the two weight fields.
type Regressor struct {
	model.BaseEstimator

	treatmentMap    FeatureMap
	instrumentalMap FeatureMap
	covariateMap    FeatureMap // nil の場合は共変量なし

	addStage1Intercept bool
	addStage2Intercept bool

	logger zerolog.Logger

	// Fit が成功したときのみ両方同時に設定される
	stage1Weight *mat.Dense
	stage2Weight *mat.Dense
}

// RegressorOption は設定オプション
type RegressorOption func(*Regressor)

// WithCovariateMap は共変量の特徴写像を設定する。
// 設定した場合、Fit / Predict には共変量データが必須になる。
func WithCovariateMap(m FeatureMap) RegressorOption {
	return func(r *Regressor) {
		r.covariateMap = m
	}
}

// WithStage1Intercept は第1段階の切片項の有無を設定する（デフォルト: true）
func WithStage1Intercept(add bool) RegressorOption {
	return func(r *Regressor) {
		r.addStage1Intercept = add
	}
}

// WithStage2Intercept は第2段階の切片項の有無を設定する（デフォルト: true）
func WithStage2Intercept(add bool) RegressorOption {
	return func(r *Regressor) {
		r.addStage2Intercept = add
	}
}

// WithLogger は構造化ロガーを設定する（デフォルト: 無効ロガー）
func WithLogger(logger zerolog.Logger) RegressorOption {
	return func(r *Regressor) {
		r.logger = logger
	}
}

// NewRegressor は新しいDFIV推定器を作成する
func NewRegressor(treatmentMap, instrumentalMap FeatureMap, options ...RegressorOption) *Regressor {
	r := &Regressor{
		treatmentMap:       treatmentMap,
		instrumentalMap:    instrumentalMap,
		addStage1Intercept: true,
		addStage2Intercept: true,
		logger:             zerolog.Nop(),
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// validateMaps は必須の特徴写像が揃っていることを確認する
func (r *Regressor) validateMaps(op string) error {
	if r.treatmentMap == nil {
		return errors.NewValueError(op, "treatment feature map is nil")
	}
	if r.instrumentalMap == nil {
		return errors.NewValueError(op, "instrumental feature map is nil")
	}
	return nil
}

// validateCovariate は共変量写像の有無とデータの有無の整合を確認する
func (r *Regressor) validateCovariate(op string, covariate *mat.Dense) error {
	if r.covariateMap != nil && covariate == nil {
		return errors.NewValueError(op, "model was constructed with a covariate feature map but no covariate data was given")
	}
	if r.covariateMap == nil && covariate != nil {
		return errors.NewValueError(op, "covariate data was given but the model has no covariate feature map")
	}
	return nil
}

// FitMatrix は行列表現の学習データでモデルを学習させる。
//
// 2つの分割それぞれに特徴写像を適用して Fit2SLS を呼び、成功した場合のみ
// 両段階の重みをまとめて保存する。途中で失敗した場合、推定器の状態は
// 呼び出し前のまま変わらない。
func (r *Regressor) FitMatrix(train1st, train2nd *dataset.TrainDataMatrix, lam1, lam2 float64) error {
	const op = "Regressor.Fit"

	if err := r.validateMaps(op); err != nil {
		return err
	}
	if err := r.validateCovariate(op, train2nd.Covariate); err != nil {
		return err
	}

	treatment1stFeature, err := r.treatmentMap.Transform(train1st.Treatment)
	if err != nil {
		return errors.Wrap(err, "dfiv: treatment feature map failed")
	}

	instrumental1stFeature, err := r.instrumentalMap.Transform(train1st.Instrumental)
	if err != nil {
		return errors.Wrap(err, "dfiv: instrumental feature map failed")
	}

	instrumental2ndFeature, err := r.instrumentalMap.Transform(train2nd.Instrumental)
	if err != nil {
		return errors.Wrap(err, "dfiv: instrumental feature map failed")
	}

	var covariate2ndFeature *mat.Dense
	if r.covariateMap != nil {
		covariate2ndFeature, err = r.covariateMap.Transform(train2nd.Covariate)
		if err != nil {
			return errors.Wrap(err, "dfiv: covariate feature map failed")
		}
	}

	n1, _ := treatment1stFeature.Dims()
	n2, _ := train2nd.Outcome.Dims()
	r.logger.Debug().
		Int("n_samples_1st", n1).
		Int("n_samples_2nd", n2).
		Float64("lam1", lam1).
		Float64("lam2", lam2).
		Bool("stage1_intercept", r.addStage1Intercept).
		Bool("stage2_intercept", r.addStage2Intercept).
		Msg("fitting two-stage least squares")

	res, err := Fit2SLS(
		treatment1stFeature,
		instrumental1stFeature,
		instrumental2ndFeature,
		covariate2ndFeature,
		train2nd.Outcome,
		lam1, lam2,
		r.addStage1Intercept,
		r.addStage2Intercept,
	)
	if err != nil {
		return err
	}

	r.logger.Debug().
		Float64("stage2_loss", res.Stage2Loss).
		Msg("two-stage fit complete")

	// 両段階の重みをまとめて確定させる
	r.stage1Weight = res.Stage1Weight
	r.stage2Weight = res.Stage2Weight
	r.SetFitted()

	return nil
}

// Fit はスライス表現の学習データを行列表現に変換して FitMatrix を呼ぶ。
// 中間生成物（予測処置特徴量と第2段階の損失）は保持しない。損失が必要な
// 場合は特徴量を用意して Fit2SLS を直接呼ぶこと。
func (r *Regressor) Fit(train1st, train2nd *dataset.TrainDataSet, lam1, lam2 float64) error {
	train1stMat, err := dataset.NewTrainDataMatrix(train1st)
	if err != nil {
		return err
	}

	train2ndMat, err := dataset.NewTrainDataMatrix(train2nd)
	if err != nil {
		return err
	}

	return r.FitMatrix(train1stMat, train2ndMat, lam1, lam2)
}

// PredictMatrix は学習済みの第2段階の重みで構造的アウトカムを予測する。
//
// 推論時は処置特徴量をそのまま使う。第1段階の射影は学習時に内生性バイアス
// を除くためのもので、予測には不要。
func (r *Regressor) PredictMatrix(treatment, covariate *mat.Dense) (*mat.Dense, error) {
	const op = "Predict"

	if err := r.RequireFitted("Regressor", op); err != nil {
		return nil, err
	}
	if err := r.validateMaps("Regressor." + op); err != nil {
		return nil, err
	}
	if err := r.validateCovariate("Regressor."+op, covariate); err != nil {
		return nil, err
	}

	treatmentFeature, err := r.treatmentMap.Transform(treatment)
	if err != nil {
		return nil, errors.Wrap(err, "dfiv: treatment feature map failed")
	}

	var covariateFeature *mat.Dense
	if r.covariateMap != nil {
		covariateFeature, err = r.covariateMap.Transform(covariate)
		if err != nil {
			return nil, errors.Wrap(err, "dfiv: covariate feature map failed")
		}
	}

	feature, err := AugmentStage2Feature(treatmentFeature, covariateFeature, r.addStage2Intercept)
	if err != nil {
		return nil, err
	}

	return linalg.Predict(feature, r.stage2Weight)
}

// Predict はスライス表現の入力に対する予測を行う。
// covariate は共変量なしで構築したモデルでは nil を渡す。
func (r *Regressor) Predict(treatment, covariate [][]float64) (*mat.Dense, error) {
	treatmentMat, err := dataset.DenseFromRows("Regressor.Predict.treatment", treatment)
	if err != nil {
		return nil, err
	}

	var covariateMat *mat.Dense
	if covariate != nil {
		covariateMat, err = dataset.DenseFromRows("Regressor.Predict.covariate", covariate)
		if err != nil {
			return nil, err
		}
	}

	return r.PredictMatrix(treatmentMat, covariateMat)
}

// EvaluateMatrix はテストデータの構造的アウトカムに対する平均二乗誤差を返す。
// 値は残差のノルムの二乗をサンプル数で割ったもの。
func (r *Regressor) EvaluateMatrix(test *dataset.TestDataMatrix) (float64, error) {
	pred, err := r.PredictMatrix(test.Treatment, test.Covariate)
	if err != nil {
		return 0, err
	}

	return metrics.MSEMatrix(test.Structural, pred)
}

// Evaluate はスライス表現のテストデータを行列表現に変換して EvaluateMatrix を呼ぶ
func (r *Regressor) Evaluate(test *dataset.TestDataSet) (float64, error) {
	testMat, err := dataset.NewTestDataMatrix(test)
	if err != nil {
		return 0, err
	}

	return r.EvaluateMatrix(testMat)
}

// Stage1Weight は学習済みの第1段階の重みを返す（未学習なら nil）
func (r *Regressor) Stage1Weight() *mat.Dense {
	return r.stage1Weight
}

// Stage2Weight は学習済みの第2段階の重みを返す（未学習なら nil）
func (r *Regressor) Stage2Weight() *mat.Dense {
	return r.stage2Weight
}
