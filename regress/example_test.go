package regress_test

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/unmix/regress"
)

// //////////////////////////////////////////////////////////////////////////////
// ExampleRegressor_Solve
// //////////////////////////////////////////////////////////////////////////////
//
// Scenario:
//
//	A decomposition already produced three pure component profiles. Four
//	new spectra arrive; each is an exact non-negative mixture of the
//	profiles. Solve recovers the mixing weights without refitting anything.
//
// Options:
//   - MaxIter = 0   (Lawson–Hanson default of 3·k rounds)
//   - Workers = 0   (one worker per CPU)
//
// Use case:
//
//	Quantifying known components in newly measured spectra at batch rate.
//
// Complexity: O(n/workers · iter·k³) time, O(n·k) memory.
func ExampleRegressor_Solve() {
	components := mat.NewDense(3, 6, []float64{
		4, 1, 0, 0, 0, 1,
		0, 1, 4, 1, 0, 0,
		0, 0, 0, 1, 4, 1,
	})
	weights := mat.NewDense(4, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0.5, 0.5, 0,
		0.25, 0.25, 0.5,
	})
	var spectra mat.Dense
	spectra.Mul(weights, components)

	g, err := regress.New(components, nil, nil, regress.DefaultOptions())
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	res, err := g.Solve(context.Background(), &spectra)
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	n, k := res.W.Dims()
	fmt.Printf("weights: %d×%d\n", n, k)
	fmt.Printf("round-trip exact: %t\n", mat.EqualApprox(weights, res.W, 1e-8))
	fmt.Printf("all converged: %t\n", res.Converged[0] && res.Converged[1] && res.Converged[2] && res.Converged[3])
	// Output:
	// weights: 4×3
	// round-trip exact: true
	// all converged: true
}

// //////////////////////////////////////////////////////////////////////////////
// ExampleNNLS
// //////////////////////////////////////////////////////////////////////////////
//
// Scenario:
//
//	A tiny system whose unconstrained optimum would drive the second
//	coefficient negative. NNLS pins it to zero and keeps the rest optimal.
//
// Complexity: O(iter·(m·n + p³)) time.
func ExampleNNLS() {
	a := mat.NewDense(2, 2, []float64{
		1, 0,
		0, 1,
	})
	b := []float64{3, -2}

	sol, err := regress.NNLS(a, b, 0, 0)
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	fmt.Printf("x = [%.0f %.0f]\n", sol.X[0], sol.X[1])
	fmt.Printf("residual = %.0f\n", sol.Residual)
	// Output:
	// x = [3 0]
	// residual = 2
}
