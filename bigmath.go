package rmi

import "math/big"

// bigPrec is the mantissa width used for extended-precision
// regression. The spec calls for "ample" precision for sums of
// products over up to 2^26+ rows of 512-bit keys; 256 bits is ample
// per DESIGN.md.
const bigPrec = 256

func newBig() *big.Float {
	return new(big.Float).SetPrec(bigPrec)
}

// bigMean computes the mean of values at extended precision,
// generalizing sachaservan-rmi/regression.go's mean from []*big.Int
// to plain float64 training coordinates.
func bigMean(values []float64) *big.Float {
	sum := newBig()
	for _, v := range values {
		sum.Add(sum, newBig().SetFloat64(v))
	}
	if len(values) == 0 {
		return sum
	}
	sum.Quo(sum, newBig().SetInt64(int64(len(values))))
	return sum
}

// bigCovariance computes the sum of (x-meanX)*(y-meanY) at extended
// precision, generalizing regression.go's covariance. The sum is not
// divided by the number of values.
func bigCovariance(x, y []float64, meanX, meanY *big.Float) *big.Float {
	covar := newBig()
	termX := newBig()
	termY := newBig()
	for i := range x {
		termX.SetFloat64(x[i])
		termX.Sub(termX, meanX)

		termY.SetFloat64(y[i])
		termY.Sub(termY, meanY)

		termX.Mul(termX, termY)
		covar.Add(covar, termX)
	}
	return covar
}

// bigVariance computes the sum of squared deviations of values from
// mean at extended precision, generalizing regression.go's variance.
// The sum is not divided by the number of values.
func bigVariance(values []float64, mean *big.Float) *big.Float {
	variance := newBig()
	tmp := newBig()
	for _, v := range values {
		tmp.SetFloat64(v)
		tmp.Sub(tmp, mean)
		tmp.Mul(tmp, tmp)
		variance.Add(variance, tmp)
	}
	return variance
}

// bigCoefficients returns the slope and intercept (m, b) of the least
// squares line y = m*x + b fit at extended precision, generalizing
// regression.go's coefficients (which additionally returned the x
// intercept w, unused outside the teacher's own lookup path).
//
// Returns ok=false when the variance of x is zero (all keys
// identical), the NumericDegenerate condition of spec.md §7.
func bigCoefficients(x, y []float64) (m, b *big.Float, ok bool) {
	meanX := bigMean(x)
	meanY := bigMean(y)

	varX := bigVariance(x, meanX)
	if varX.Sign() == 0 {
		return nil, nil, false
	}

	m = bigCovariance(x, y, meanX, meanY)
	m.Quo(m, varX)

	b = newBig().Mul(meanX, m)
	b.Sub(meanY, b)

	return m, b, true
}
