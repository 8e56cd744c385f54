package analysis

import "math"

// epsilon guards divisions by near-zero denominators.
const epsilon = 1e-10

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// variance is the population variance.
func variance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := mean(data)
	sum := 0.0
	for _, v := range data {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(data))
}

// slope is the least-squares slope of data against its index.
func slope(data []float64) float64 {
	n := len(data)
	if n < 2 {
		return 0
	}

	// x = 0..n-1, so the x statistics are closed-form.
	meanX := float64(n-1) / 2
	meanY := mean(data)

	num := 0.0
	den := 0.0
	for i, y := range data {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// autocorr is the normalized autocorrelation of data at the given lag,
// r(lag)/r(0). Returns 0 for a zero-variance series.
func autocorr(data []float64, lag int) float64 {
	n := len(data)
	if lag < 0 || lag >= n {
		return 0
	}

	m := mean(data)
	r0 := 0.0
	for _, v := range data {
		d := v - m
		r0 += d * d
	}
	if r0 == 0 {
		return 0
	}

	r := 0.0
	for i := 0; i < n-lag; i++ {
		r += (data[i] - m) * (data[i+lag] - m)
	}
	return r / r0
}

// pearson is the correlation coefficient between two equal-length series.
// Defined as 0 when either series has zero variance.
func pearson(a, b []float64) float64 {
	n := len(a)
	if n == 0 || n != len(b) {
		return 0
	}

	meanA := mean(a)
	meanB := mean(b)

	cov := 0.0
	varA := 0.0
	varB := 0.0
	for i := 0; i < n; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
