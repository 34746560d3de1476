package rmi

// solveLinearSystem solves A*x = b for x via Gaussian elimination
// with partial pivoting, where A is an n x n matrix (row-major) and b
// has length n. Used by CubicModel to solve the degree-3 polynomial
// regression normal equations; small enough (n=4) that a dense direct
// solve is simpler and faster than pulling in a linear-algebra
// package for one 4x4 system.
//
// Returns ok=false if A is singular (NumericDegenerate).
func solveLinearSystem(a [][]float64, b []float64) (x []float64, ok bool) {
	n := len(b)
	// augmented matrix, mutated in place
	m := make([][]float64, n)
	for i := range m {
		m[i] = append([]float64(nil), a[i]...)
		m[i] = append(m[i], b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		best := absf(m[col][col])
		for r := col + 1; r < n; r++ {
			if v := absf(m[r][col]); v > best {
				pivot, best = r, v
			}
		}
		if best < 1e-12 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := col + 1; r < n; r++ {
			factor := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	x = make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := m[i][n]
		for j := i + 1; j < n; j++ {
			sum -= m[i][j] * x[j]
		}
		x[i] = sum / m[i][i]
	}
	return x, true
}
