package scene

// UniformWeights returns a weight vector of length n with every entry set to w, the common case
// for a constraint whose rows should all be trusted equally.
func UniformWeights(n int, w float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = w
	}
	return out
}

// CartesianWeights builds the canonical 6-element weight vector for a Cartesian constraint,
// weighting the linear and angular blocks independently - the common case of wanting position
// tracked tightly while leaving orientation loose, or vice versa.
func CartesianWeights(linear, angular float64) []float64 {
	return []float64{linear, linear, linear, angular, angular, angular}
}
