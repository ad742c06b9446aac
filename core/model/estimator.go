package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる。教師なしモデルでは y は無視される
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator は学習状態を持つモデルのインターフェース
type Estimator interface {
	Fitter
	IsFitted() bool
}

// DensityEstimator は確率密度を推定するモデルのインターフェース
type DensityEstimator interface {
	Estimator
	Predictor

	// PredictProba は各サンプルの成分ごとの事後確率 (サンプル数 x 成分数) を返す
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Score は X の対数尤度を返す
	Score(X mat.Matrix) (float64, error)

	// BIC は X に対するベイズ情報量規準を返す。大きいほど良い
	BIC(X mat.Matrix) (float64, error)
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// WeightExporter は学習済みパラメータを MixtureWeights として入出力できるモデルのインターフェース
type WeightExporter interface {
	ExportWeights() (*MixtureWeights, error)
	ImportWeights(weights *MixtureWeights) error
}
