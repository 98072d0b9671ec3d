package analysis

import "math"

// Numerical machinery for the exact binomial interval: log-gamma, the
// regularized incomplete beta function, and a bisection inverse of the beta
// CDF. Kept self-contained so the interval math has no tolerance drift
// across library upgrades.

// lanczosCoeffs are the g=7, n=9 Lanczos series coefficients.
var lanczosCoeffs = [9]float64{
	0.99999999999980993,
	676.5203681218851,
	-1259.1392167224028,
	771.32342877765313,
	-176.61502916214059,
	12.507343278686905,
	-0.13857109526572012,
	9.9843695780195716e-6,
	1.5056327351493116e-7,
}

// logGamma computes log Γ(x) by the Lanczos approximation, with the
// reflection formula for x < 0.5.
func logGamma(x float64) float64 {
	if x < 0.5 {
		// Γ(z)Γ(1-z) = π/sin(πz)
		return math.Log(math.Pi) - math.Log(math.Sin(math.Pi*x)) - logGamma(1-x)
	}

	x--
	s := lanczosCoeffs[0]
	for i := 1; i < len(lanczosCoeffs); i++ {
		s += lanczosCoeffs[i] / (x + float64(i))
	}

	t := x + float64(len(lanczosCoeffs)) - 1.5
	return 0.5*math.Log(2*math.Pi) + (x+0.5)*math.Log(t) - t + math.Log(s)
}

// incompleteBeta computes the regularized incomplete beta function I_x(a,b)
// by continued-fraction expansion, switching through the symmetry
// I_x(a,b) = 1 - I_{1-x}(b,a) when x is past (a+1)/(a+b+2) for faster
// convergence.
func incompleteBeta(x, a, b float64) float64 {
	if x <= 0 {
		return 0.0
	}
	if x >= 1 {
		return 1.0
	}

	if x > (a+1)/(a+b+2) {
		return 1.0 - incompleteBeta(1-x, b, a)
	}

	bt := math.Exp(logGamma(a+b) - logGamma(a) - logGamma(b) + a*math.Log(x) + b*math.Log(1-x))
	return bt * betaContinuedFraction(x, a, b) / a
}

// betaContinuedFraction evaluates the Lentz continued fraction for I_x(a,b).
func betaContinuedFraction(x, a, b float64) float64 {
	const (
		eps     = 1e-15
		maxIter = 1000
	)

	qab := a + b
	qap := a + 1
	qam := a - 1
	c := 1.0
	d := 1.0 - qab*x/qap
	if math.Abs(d) < eps {
		d = eps
	}
	d = 1.0 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		m2 := float64(2 * m)
		mf := float64(m)

		aa := mf * (b - mf) * x / ((qam + m2) * (a + m2))
		d = 1.0 + aa*d
		if math.Abs(d) < eps {
			d = eps
		}
		c = 1.0 + aa/c
		if math.Abs(c) < eps {
			c = eps
		}
		d = 1.0 / d
		h *= d * c

		aa = -(a + mf) * (qab + mf) * x / ((a + m2) * (qap + m2))
		d = 1.0 + aa*d
		if math.Abs(d) < eps {
			d = eps
		}
		c = 1.0 + aa/c
		if math.Abs(c) < eps {
			c = eps
		}
		d = 1.0 / d
		del := d * c
		h *= del

		if math.Abs(del-1.0) < eps {
			break
		}
	}
	return h
}

// betaCDF computes P(X ≤ x) for X ~ Beta(a, b), clamping x to [0,1].
func betaCDF(x, a, b float64) float64 {
	if x <= 0 {
		return 0.0
	}
	if x >= 1 {
		return 1.0
	}
	return incompleteBeta(x, a, b)
}

// invBetaCDF finds x with betaCDF(x, a, b) = p by bisection on [0,1].
func invBetaCDF(p, a, b float64) float64 {
	if p <= 0 {
		return 0.0
	}
	if p >= 1 {
		return 1.0
	}

	const (
		tolerance = 1e-12
		maxIter   = 100
	)

	lower, upper := 0.0, 1.0
	for i := 0; i < maxIter; i++ {
		x := (lower + upper) / 2
		cdf := betaCDF(x, a, b)

		if math.Abs(cdf-p) < tolerance {
			return x
		}
		if cdf < p {
			lower = x
		} else {
			upper = x
		}
		if upper-lower < tolerance {
			break
		}
	}
	return (lower + upper) / 2
}
