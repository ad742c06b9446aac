/*
Package mixture fits univariate Gaussian mixtures with Expectation-Maximization
and chooses the number of components with the Bayesian Information Criterion.

# Model

A Model pairs a slice of Components with the samples it describes. Each
Component carries a mean (mu), a variance term (sigma) and a mixing weight
(tau). Responsibilities and the log-likelihood are computed once when the
Model is built, so all accessors are cheap and Models never change.

The log-likelihood used throughout the package is

	Σ_x ln( Π_c (tau_c * density_c(x)) ^ r_c(x) )

where r_c(x) is the responsibility of component c for sample x. This is not
the textbook mixture likelihood; BIC comparisons are made on this value.

# Optimisation

Optimizer.CreateModel spreads the components evenly over the sample range.
Optimizer.Maximize then alternates the E step (responsibilities) and the M step
(responsibility weighted mean and standard deviation, floored at 1) until one
step improves the log-likelihood by no more than -LL0*deltaRatio, where LL0 is
the log-likelihood of the starting model. Mixing weights stay at their initial
values. Every adopted model is recorded in a Trajectory which can be walked
with Model.PriorModel or Model.History.

Optimizer.SelectModel starts with two components and adds one at a time while
the BIC keeps increasing. Optimizer.CreateMaximizedModels fits every count
from 2 up to a maximum without early stopping.

# Example

	opt := mixture.NewOptimizer(mixture.WithRandomState(42))
	model, err := opt.SelectModel(samples)
	if err != nil {
	    return err
	}
	for _, c := range model.Components() {
	    fmt.Printf("mu=%.3f sigma=%.3f\n", c.Mu(), c.Sigma())
	}

# Concurrency

The package spawns no goroutines. An Optimizer owns its random source and
must not be used from several goroutines at once. Models are immutable and
may be shared freely once returned.
*/
package mixture
