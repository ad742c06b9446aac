// Package metrics はモデル選択に使う情報量規準を提供します。
//
// 符号は「大きいほど良い」に揃えています。scikit-learn の GaussianMixture.bic
// とは符号と係数が異なる点に注意してください。
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/exmax/pkg/errors"
)

// BIC はベイズ情報量規準 2*logLikelihood - params*ln(samples) を計算する。
// samples は 1 以上であること。
func BIC(logLikelihood float64, params, samples int) float64 {
	return 2*logLikelihood - float64(params)*math.Log(float64(samples))
}

// AIC は赤池情報量規準 2*logLikelihood - 2*params を計算する。
func AIC(logLikelihood float64, params int) float64 {
	return 2*logLikelihood - 2*float64(params)
}

// BestScore は scores のうち最大値のインデックスを返す。
// NaN は比較から除外される。全て NaN の場合はエラー。
func BestScore(scores []float64) (int, error) {
	if len(scores) == 0 {
		return -1, errors.NewInvalidInputError("BestScore", "scores", "must not be empty", 0)
	}
	finite := make([]float64, len(scores))
	valid := false
	for i, s := range scores {
		if math.IsNaN(s) {
			finite[i] = math.Inf(-1)
			continue
		}
		finite[i] = s
		valid = true
	}
	if !valid {
		return -1, errors.NewInvalidInputError("BestScore", "scores", "all scores are NaN", len(scores))
	}
	return floats.MaxIdx(finite), nil
}
