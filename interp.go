package codec2

import "math"

// interpWo interpolates the fundamental frequency midway between two frames.
func interpWo(interp *Model, prev *Model, next *Model, woMin float64) {
	interpWo2(interp, prev, next, 0.5, woMin)
}

// interpWo2 interpolates the fundamental frequency between frames with the
// given weight (0 = prev, 1 = next).
func interpWo2(interp *Model, prev *Model, next *Model, weight float64, woMin float64) {
	if interp.Voiced && !prev.Voiced && !next.Voiced {
		interp.Voiced = false
	}
	if interp.Voiced {
		if prev.Voiced && next.Voiced {
			interp.Wo = (1.0-weight)*prev.Wo + weight*next.Wo
		}
		if !prev.Voiced && next.Voiced {
			interp.Wo = next.Wo
		}
		if prev.Voiced && !next.Voiced {
			interp.Wo = prev.Wo
		}
	} else {
		interp.Wo = woMin
	}
	interp.L = int(PI / interp.Wo)
}

// interpEnergy interpolates energy between frames in the log domain.
func interpEnergy(prevE, nextE float64) float64 {
	return math.Sqrt(prevE * nextE)
}

// interpEnergy2 interpolates energy with an arbitrary weight in the log
// domain, used by the 40ms modes where four subframes span one frame.
func interpEnergy2(prevE, nextE, weight float64) float64 {
	return math.Pow(10.0, (1.0-weight)*math.Log10(prevE+1e-12)+weight*math.Log10(nextE+1e-12))
}

// interpolateLsp linearly interpolates LSP vectors between frames.
func interpolateLsp(interp []float64, prev []float64, next []float64, weight float64, order int) {
	for i := 0; i < order; i++ {
		interp[i] = (1.0-weight)*prev[i] + weight*next[i]
	}
}
