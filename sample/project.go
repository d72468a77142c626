package sample

import "gonum.org/v1/gonum/mat"

// OrthoProj computes the orthogonal projection of x0 onto the affine
// subspace defined by Ax=b, the intersection of the affine hyperplanes that
// constitute the rows of A with associated shifts in b.  The equation is:
//
//	proj = [I - A^T * (A * A^T)^-1 * A]*x0 + A^T * (A * A^T)^-1 * b
//
// where I is the identity matrix.  A is an m by n matrix with m <= n; if
// m == n the result is the solution to the system A*x = b.  x0 is never
// modified.
func OrthoProj(x0 []float64, A, b *mat.Dense) ([]float64, error) {
	x := mat.NewDense(len(x0), 1, append([]float64{}, x0...))

	m, n := A.Dims()
	if m == n {
		var proj mat.Dense
		if err := proj.Solve(A, b); err != nil {
			return nil, err
		}
		return mat.Col(nil, 0, &proj), nil
	}

	// B = A^T * (A*A^T)^-1
	var AAt, inv, B mat.Dense
	AAt.Mul(A, A.T())
	if err := inv.Inverse(&AAt); err != nil {
		return nil, err
	}
	B.Mul(A.T(), &inv)

	// proj = (I - B*A)*x0 + B*b
	var BA, IBA, proj, shift, out mat.Dense
	BA.Mul(&B, A)
	IBA.Sub(eye(n), &BA)
	proj.Mul(&IBA, x)
	shift.Mul(&B, b)
	out.Add(&proj, &shift)
	return mat.Col(nil, 0, &out), nil
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// NearestFeasible returns the nearest point to x0 that doesn't violate the
// constraints in the system Ax <= b, found by repeatedly projecting onto
// the most violated constraint plane and accumulating the violated rows.
// An x0 that violates nothing is returned unchanged (as a copy).
func NearestFeasible(x0 []float64, A, b *mat.Dense) ([]float64, error) {
	proj := append([]float64{}, x0...)
	var badA, badb *mat.Dense
	for {
		Aviol, bviol := mostViolated(proj, A, b)
		if Aviol == nil {
			return proj, nil
		}

		if badA == nil {
			badA, badb = Aviol, bviol
		} else {
			var sA, sb mat.Dense
			sA.Stack(badA, Aviol)
			sb.Stack(badb, bviol)
			badA, badb = &sA, &sb
		}

		var err error
		proj, err = OrthoProj(x0, badA, badb)
		if err != nil {
			return nil, err
		}

		// projected down to a single point
		if m, n := badA.Dims(); m == n {
			return proj, nil
		}
	}
}

// mostViolated returns the most violated constraint in the system Ax <= b as
// a one-row system, or nil, nil if x0 violates nothing.
func mostViolated(x0 []float64, A, b *mat.Dense) (Aviol, bviol *mat.Dense) {
	const eps = 1e-10

	var ax mat.Dense
	ax.Mul(A, mat.NewDense(len(x0), 1, x0))

	m, _ := ax.Dims()
	worst := eps
	worstRow := -1
	for i := 0; i < m; i++ {
		if diff := ax.At(i, 0) - b.At(i, 0); diff > worst {
			worst = diff
			worstRow = i
		}
	}
	if worstRow == -1 {
		return nil, nil
	}

	return mat.NewDense(1, len(x0), mat.Row(nil, worstRow, A)),
		mat.NewDense(1, 1, []float64{b.At(worstRow, 0)})
}
