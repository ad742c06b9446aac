package mixture

import (
	"github.com/YuminosukeSato/exmax/core/model"
	em "github.com/YuminosukeSato/exmax/mixture"
	"github.com/YuminosukeSato/exmax/pkg/errors"
)

// ExportWeights は学習済みパラメータを MixtureWeights として返す
func (gm *GaussianMixture) ExportWeights() (*model.MixtureWeights, error) {
	if err := gm.state.RequireFitted(modelName, "ExportWeights"); err != nil {
		return nil, err
	}
	_, nSamples := gm.state.GetDimensions()

	weights := &model.MixtureWeights{
		ModelType:       modelName,
		Version:         model.WeightsVersion,
		Means:           gm.Means(),
		Variances:       gm.Variances(),
		Weights:         gm.Weights(),
		Hyperparameters: gm.GetParams(),
		Metadata:        map[string]interface{}{"n_samples": nSamples},
		IsFitted:        true,
	}

	gm.mu.RLock()
	weights.LogLikelihood = gm.logLikelihood_
	weights.BIC = gm.bic_
	weights.NIter = gm.nIter_
	weights.Converged = gm.converged_
	gm.mu.RUnlock()

	if err := weights.Validate(); err != nil {
		return nil, errors.Wrap(err, "GaussianMixture.ExportWeights")
	}
	return weights, nil
}

// ImportWeights は MixtureWeights から学習済み状態を復元する。
// 学習データは含まれないため Model() は nil になる
func (gm *GaussianMixture) ImportWeights(weights *model.MixtureWeights) error {
	if weights == nil {
		return errors.NewInvalidInputError("GaussianMixture.ImportWeights", "weights", "must not be nil", nil)
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	if weights.ModelType != modelName {
		return errors.NewValidationError("model_type", "must be "+modelName, weights.ModelType)
	}
	if !weights.IsFitted {
		return errors.NewValidationError("is_fitted", "weights must come from a fitted model", false)
	}

	components := make([]em.Component, weights.ComponentCount())
	for i := range components {
		components[i] = em.NewComponent(weights.Means[i], weights.Variances[i], weights.Weights[i])
	}

	nSamples := 0
	if v, ok := weights.Metadata["n_samples"].(float64); ok {
		nSamples = int(v)
	} else if v, ok := weights.Metadata["n_samples"].(int); ok {
		nSamples = v
	}

	gm.mu.Lock()
	gm.components_ = components
	gm.model_ = nil
	gm.logLikelihood_ = weights.LogLikelihood
	gm.bic_ = weights.BIC
	gm.nIter_ = weights.NIter
	gm.converged_ = weights.Converged
	gm.nComponents = len(components)
	gm.mu.Unlock()

	gm.state.SetFitted(1, nSamples)
	return nil
}

var (
	_ model.DensityEstimator = (*GaussianMixture)(nil)
	_ model.WeightExporter   = (*GaussianMixture)(nil)
	_ model.ParameterGetter  = (*GaussianMixture)(nil)
)
