package node

// Interpolate maps value through the piecewise-linear curve defined by in and
// out. Values outside the input range use the first or last segment.
// The ranges must have passed InterpolationConfig.Validate.
func Interpolate(value float64, in, out []float64) float64 {
	i := findRangeIndex(value, in)
	return interpolate(value, in[i], in[i+1], out[i], out[i+1])
}

func interpolate(value, inMin, inMax, outMin, outMax float64) float64 {
	return outMin + (outMax-outMin)*(value-inMin)/(inMax-inMin)
}

// findRangeIndex returns the index of the segment [in[i], in[i+1]] that value
// falls into, clamped to the first and last segment.
func findRangeIndex(value float64, in []float64) int {
	i := 1
	for ; i < len(in)-1; i++ {
		if in[i] >= value {
			break
		}
	}
	return i - 1
}
