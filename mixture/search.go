package mixture

import (
	"github.com/YuminosukeSato/exmax/pkg/errors"
	"github.com/YuminosukeSato/exmax/pkg/log"
)

// minSearchComponents は成分数探索の開始値です。
const minSearchComponents = 2

// SelectModel は 2 成分から始めて成分を一つずつ増やし、BIC が厳密に改善する間だけ
// 探索を続ける。最後に採用されたモデルを返す。
func (o *Optimizer) SelectModel(samples []float64) (*Model, error) {
	if err := validateSamples("SelectModel", samples); err != nil {
		return nil, err
	}
	logger := o.logger.With(log.OperationKey, log.OperationSelect, log.SamplesKey, len(samples))

	k := minSearchComponents
	model, err := o.CreateMaximizedModel(samples, k)
	if err != nil {
		return nil, errors.Wrapf(err, "select model: %d components", k)
	}

	for {
		k++
		next, err := o.CreateMaximizedModel(samples, k)
		if err != nil {
			return nil, errors.Wrapf(err, "select model: %d components", k)
		}
		logger.Debug("compared component counts",
			log.ComponentsKey, k,
			log.BICKey, next.BIC(),
			"previous_bic", model.BIC(),
		)

		// NaN の BIC は改善とみなさない
		if !(next.BIC() > model.BIC()) {
			logger.Info("selected component count",
				log.ComponentsKey, model.ComponentCount(),
				log.BICKey, model.BIC(),
			)
			return model, nil
		}
		model = next
	}
}

// CreateMaximizedModels は 2 から maxComponentCount までの各成分数について
// 独立に最大化したモデルを成分数の昇順で返す。
func (o *Optimizer) CreateMaximizedModels(samples []float64, maxComponentCount int) ([]*Model, error) {
	if err := validateSamples("CreateMaximizedModels", samples); err != nil {
		return nil, err
	}
	if maxComponentCount < minSearchComponents {
		return nil, errors.NewInvalidInputError("CreateMaximizedModels", "maxComponentCount", "must be at least 2", maxComponentCount)
	}

	models := make([]*Model, 0, maxComponentCount-minSearchComponents+1)
	for k := minSearchComponents; k <= maxComponentCount; k++ {
		model, err := o.CreateMaximizedModel(samples, k)
		if err != nil {
			return nil, errors.Wrapf(err, "batch: %d components", k)
		}
		models = append(models, model)
	}
	return models, nil
}
