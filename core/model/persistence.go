package model

import (
	"io"
	"os"

	"github.com/YuminosukeSato/exmax/pkg/errors"
)

// SaveWeights は学習済みパラメータを JSON ファイルに保存する
//
// 使用例:
//
//	weights, err := gm.ExportWeights()
//	if err != nil {
//	    return err
//	}
//	err = model.SaveWeights(weights, "mixture.json")
func SaveWeights(weights *MixtureWeights, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	defer file.Close()

	return SaveWeightsToWriter(weights, file)
}

// LoadWeights は JSON ファイルから学習済みパラメータを読み込み、検証する
func LoadWeights(filename string) (*MixtureWeights, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	return LoadWeightsFromReader(file)
}

// SaveWeightsToWriter は検証済みのパラメータを w に JSON で書き出す
func SaveWeightsToWriter(weights *MixtureWeights, w io.Writer) error {
	if weights == nil {
		return errors.NewInvalidInputError("SaveWeights", "weights", "must not be nil", nil)
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	data, err := weights.ToJSON()
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "failed to write mixture weights")
	}
	return nil
}

// LoadWeightsFromReader は r から JSON を読み込み、検証する
func LoadWeightsFromReader(r io.Reader) (*MixtureWeights, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read mixture weights")
	}
	if len(data) == 0 {
		return nil, errors.NewModelError("LoadWeights", "empty input", nil)
	}

	weights := &MixtureWeights{}
	if err := weights.FromJSON(data); err != nil {
		return nil, err
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return weights, nil
}
