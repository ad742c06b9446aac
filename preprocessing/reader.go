// Package preprocessing は混合モデルに入力するサンプル列の読み込みと要約を提供します。
package preprocessing

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/YuminosukeSato/exmax/pkg/errors"
	"github.com/YuminosukeSato/exmax/pkg/log"
)

// ParseSamples は空白区切りのテキストから数値を読み込む。
// 数値として解釈できないトークンと非有限値 (NaN, Inf) は読み飛ばされる。
// 有効なサンプルが一つもない場合は ErrEmptyData を返す。
func ParseSamples(r io.Reader) ([]float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	var samples []float64
	skipped := 0
	for scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			skipped++
			continue
		}
		samples = append(samples, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read samples")
	}

	if skipped > 0 {
		log.GetLoggerWithName("preprocessing").Debug("skipped tokens",
			"skipped", skipped,
			log.SamplesKey, len(samples),
		)
	}
	if len(samples) == 0 {
		return nil, errors.NewModelError("ParseSamples", "no numeric samples", errors.ErrEmptyData)
	}
	return samples, nil
}

// LoadSamples は path のファイルを ParseSamples で読み込む。
func LoadSamples(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	samples, err := ParseSamples(file)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return samples, nil
}
