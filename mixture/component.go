package mixture

import (
	"fmt"
	"math"
)

// Component は一次元正規分布の混合成分です。
// sigma は分散として密度式にそのまま使われ、二乗されません。
// 値は生成後に変更できません。
type Component struct {
	mu    float64
	sigma float64
	tau   float64
}

// NewComponent returns a component with mean mu, variance term sigma and
// mixing weight tau. No validation is performed.
func NewComponent(mu, sigma, tau float64) Component {
	return Component{mu: mu, sigma: sigma, tau: tau}
}

// Mu returns the component mean.
func (c Component) Mu() float64 { return c.mu }

// Sigma returns the variance term.
func (c Component) Sigma() float64 { return c.sigma }

// Tau returns the mixing weight.
func (c Component) Tau() float64 { return c.tau }

// Density は sample における正規密度 exp(-(x-mu)^2/(2*sigma)) / sqrt(2*pi*sigma) を返す。
// 結果には math.SmallestNonzeroFloat64 が加算され、NaN の場合はその値そのものを返すため、
// 戻り値が NaN や 0 以下になることはない。
func (c Component) Density(sample float64) float64 {
	d := sample - c.mu
	l := math.Exp(-(d*d)/(2*c.sigma)) / math.Sqrt(2*math.Pi*c.sigma)
	if math.IsNaN(l) {
		return math.SmallestNonzeroFloat64
	}
	return l + math.SmallestNonzeroFloat64
}

func (c Component) String() string {
	return fmt.Sprintf("Component{mu=%g, sigma=%g, tau=%g}", c.mu, c.sigma, c.tau)
}
