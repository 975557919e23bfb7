package codec2

// earProtection limits large output excursions, which are most likely the
// result of bit errors in the received frame. Excursions above the set point
// are attenuated quadratically so big hits are cut harder than small ones.
func earProtection(inOut []float64, n int) {
	maxSample := 0.0
	for i := 0; i < n; i++ {
		if abs(inOut[i]) > maxSample {
			maxSample = abs(inOut[i])
		}
	}

	over := maxSample / 30000.0
	if over > 1.0 {
		gain := 1.0 / (over * over)
		for i := 0; i < n; i++ {
			inOut[i] *= gain
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
