package model

import (
	"encoding/json"
	"math"

	"github.com/YuminosukeSato/exmax/pkg/errors"
)

// WeightsVersion は MixtureWeights の現在のフォーマットバージョン
const WeightsVersion = "1.0"

// MixtureWeights は混合モデルの学習済みパラメータを表す構造体（シリアライゼーション用）
type MixtureWeights struct {
	// ModelType はモデルの種類（GaussianMixture）
	ModelType string `json:"model_type"`

	// Version はフォーマットのバージョン（互換性チェック用）
	Version string `json:"version"`

	// Means は各成分の平均
	Means []float64 `json:"means"`

	// Variances は各成分の分散項 sigma
	Variances []float64 `json:"variances"`

	// Weights は各成分の混合比 tau
	Weights []float64 `json:"weights"`

	// LogLikelihood は学習データに対する対数尤度
	LogLikelihood float64 `json:"log_likelihood"`

	// BIC は学習データに対するベイズ情報量規準
	BIC float64 `json:"bic"`

	// NIter は採用された EM ステップ数
	NIter int `json:"n_iter"`

	// Converged は反復上限に達する前に収束したかどうか
	Converged bool `json:"converged"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// Metadata は追加のメタデータ（学習時の統計等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ComponentCount は成分数を返す
func (mw *MixtureWeights) ComponentCount() int {
	return len(mw.Means)
}

// ToJSON はMixtureWeightsをJSON形式にシリアライズ
func (mw *MixtureWeights) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(mw, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal mixture weights")
	}
	return data, nil
}

// FromJSON はJSON形式からMixtureWeightsをデシリアライズ
func (mw *MixtureWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "unmarshal mixture weights")
	}
	return nil
}

// Validate はMixtureWeightsの妥当性を検証
func (mw *MixtureWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", mw.ModelType)
	}

	if mw.Version == "" {
		return errors.NewValidationError("version", "is required", mw.Version)
	}

	if len(mw.Variances) != len(mw.Means) || len(mw.Weights) != len(mw.Means) {
		return errors.NewValidationError("components", "means, variances and weights must have the same length",
			[]int{len(mw.Means), len(mw.Variances), len(mw.Weights)})
	}

	if !mw.IsFitted && len(mw.Means) > 0 {
		return errors.NewValidationError("is_fitted", "unfitted model should not have components", len(mw.Means))
	}

	if mw.IsFitted && len(mw.Means) == 0 {
		return errors.NewValidationError("means", "fitted model must have components", 0)
	}

	for i := range mw.Means {
		if math.IsNaN(mw.Means[i]) || math.IsInf(mw.Means[i], 0) {
			return errors.NewValidationError("means", "must be finite", mw.Means[i])
		}
		if !(mw.Variances[i] > 0) || math.IsInf(mw.Variances[i], 0) {
			return errors.NewValidationError("variances", "must be positive and finite", mw.Variances[i])
		}
		if !(mw.Weights[i] >= 0) || math.IsInf(mw.Weights[i], 0) {
			return errors.NewValidationError("weights", "must be non-negative and finite", mw.Weights[i])
		}
	}

	return nil
}

// Clone はMixtureWeightsのディープコピーを作成
func (mw *MixtureWeights) Clone() *MixtureWeights {
	clone := &MixtureWeights{
		ModelType:       mw.ModelType,
		Version:         mw.Version,
		LogLikelihood:   mw.LogLikelihood,
		BIC:             mw.BIC,
		NIter:           mw.NIter,
		Converged:       mw.Converged,
		IsFitted:        mw.IsFitted,
		Means:           make([]float64, len(mw.Means)),
		Variances:       make([]float64, len(mw.Variances)),
		Weights:         make([]float64, len(mw.Weights)),
		Hyperparameters: make(map[string]interface{}),
		Metadata:        make(map[string]interface{}),
	}

	copy(clone.Means, mw.Means)
	copy(clone.Variances, mw.Variances)
	copy(clone.Weights, mw.Weights)

	for k, v := range mw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}

	for k, v := range mw.Metadata {
		clone.Metadata[k] = v
	}

	return clone
}
