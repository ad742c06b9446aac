// Package exmax fits univariate Gaussian mixture models by expectation
// maximization and chooses the number of components with the Bayesian
// information criterion.
//
// Every fit keeps the chain of models it went through, so a result can be
// inspected iteration by iteration, forked from any point, or continued
// with a tighter threshold.
//
// # Installation
//
//	go get github.com/YuminosukeSato/exmax
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/exmax/mixture"
//	)
//
//	func main() {
//	    samples := []float64{1.1, 0.8, 1.0, 9.2, 8.9, 9.0}
//
//	    opt := mixture.NewOptimizer(mixture.WithRandomState(42))
//	    model, err := opt.SelectModel(samples)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    for _, c := range model.Components() {
//	        fmt.Println(c)
//	    }
//	    fmt.Println("BIC:", model.BIC())
//	}
//
// # Packages
//
//   - mixture: Component, Model, Trajectory and the EM Optimizer
//   - sklearn/mixture: GaussianMixture estimator on gonum matrices
//   - preprocessing: sample file parsing and descriptive statistics
//   - report: text reports, BIC comparison tables and plots
//   - metrics: information criteria
//   - core/model: estimator interfaces, weight export and fit state
//   - pkg/errors, pkg/log: structured errors, warnings and logging
//   - cmd/exmax: command line interface (fit, batch)
//
// # scikit-learn Style API
//
//	gm := mixture.NewGaussianMixture(
//	    mixture.WithGMMNComponents(0), // 0 selects by BIC
//	    mixture.WithGMMRandomState(42),
//	)
//	if err := gm.Fit(X, nil); err != nil {
//	    log.Fatal(err)
//	}
//	labels, _ := gm.Predict(X)
//
// # License
//
// exmax is released under the MIT License.
package exmax
