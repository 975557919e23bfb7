package codec2

import "math"

// grid spacing for LSP root searches
const lspDelta1 = 0.01

// lpcToLsp converts LPC coefficients a (length order+1, with a[0]==1) into
// LSP frequencies (in radians) stored in lsp (length at least order). nb is
// the number of bisection sub-intervals and delta the root search grid
// spacing. It returns the number of roots found; anything other than order
// means the fit was ill-conditioned and the caller should fall back to a
// benign LSP set.
func lpcToLsp(a []float64, lsp []float64, order int, nb int, delta float64) int {
	var psuml, psumr, psumm, tempXr, xl, xr, xm float64
	var tempSumr float64
	roots := 0
	m := order / 2

	P := make([]float64, order+1)
	Q := make([]float64, order+1)
	P[0] = 1.0
	Q[0] = 1.0
	for i := 1; i <= m; i++ {
		P[i] = a[i] + a[order+1-i] - P[i-1]
		Q[i] = a[i] - a[order+1-i] + Q[i-1]
	}
	for i := 0; i < m; i++ {
		P[i] *= 2.0
		Q[i] *= 2.0
	}

	// Search for roots of P and Q alternately on the cosine axis, coarse
	// grid first then bisection.
	xl = 1.0
	xr = 0.0
	for j := 0; j < order; j++ {
		var poly []float64
		if j%2 == 1 {
			poly = Q
		} else {
			poly = P
		}
		psuml = chebPolyEva(poly[:m+1], xl, order)
		flag := true
		for flag && xr >= -1.0 {
			xr = xl - delta
			psumr = chebPolyEva(poly[:m+1], xr, order)
			tempSumr = psumr
			tempXr = xr
			if psumr*psuml < 0.0 || psumr == 0.0 {
				roots++
				psumm = psuml
				for k := 0; k <= nb; k++ {
					xm = (xl + xr) / 2.0
					psumm = chebPolyEva(poly[:m+1], xm, order)
					if psumm*psuml > 0.0 {
						psuml = psumm
						xl = xm
					} else {
						xr = xm
					}
				}
				lsp[j] = xm
				xl = xm
				flag = false
			} else {
				psuml = tempSumr
				xl = tempXr
			}
		}
	}

	// Convert from the cosine domain to radians.
	for i := 0; i < order; i++ {
		if lsp[i] > 1.0 {
			lsp[i] = 1.0
		} else if lsp[i] < -1.0 {
			lsp[i] = -1.0
		}
		lsp[i] = math.Acos(lsp[i])
	}

	return roots
}

// chebPolyEva evaluates a Chebyshev polynomial series with the given
// coefficients at x. coef has length order/2+1.
func chebPolyEva(coef []float64, x float64, order int) float64 {
	n := order/2 + 1
	T := make([]float64, n)
	T[0] = 1.0
	if n > 1 {
		T[1] = x
	}
	for i := 2; i < n; i++ {
		T[i] = 2*x*T[i-1] - T[i-2]
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += coef[(order/2)-i] * T[i]
	}
	return sum
}

// checkLspOrder enforces ascending LSP order, nudging offenders apart and
// rescanning. The pass count is bounded so an adversarial bit frame cannot
// spin the decoder. Returns the number of swaps performed.
func checkLspOrder(lsp []float64, order int) int {
	swaps := 0
	maxSwaps := 3 * order
	for i := 1; i < order; i++ {
		if lsp[i] < lsp[i-1] {
			swaps++
			tmp := lsp[i-1]
			lsp[i-1] = lsp[i] - 0.1
			lsp[i] = tmp + 0.1
			if swaps >= maxSwaps {
				break
			}
			i = 0 // rescan from the start
		}
	}
	return swaps
}

// bwExpandLsps forces a minimum separation between consecutive LSPs.
// minSepLow (Hz) applies to the first four LSPs, minSepHigh to the rest.
func bwExpandLsps(lsp []float64, order int, minSepLow, minSepHigh float64) {
	factor := math.Pi / 4000.0
	for i := 1; i < 4 && i < order; i++ {
		if lsp[i]-lsp[i-1] < minSepLow*factor {
			lsp[i] = lsp[i-1] + minSepLow*factor
		}
	}
	for i := 4; i < order; i++ {
		if lsp[i]-lsp[i-1] < minSepHigh*factor {
			lsp[i] = lsp[i-1] + minSepHigh*factor
		}
	}
}

// lspToLpc converts LSP frequencies (in radians) back to LPC coefficients.
// lsp has length order, ak length order+1.
func lspToLpc(lsp []float64, ak []float64, order int) {
	xfreq := make([]float64, order)
	for i := 0; i < order; i++ {
		xfreq[i] = math.Cos(lsp[i])
	}

	Wp := make([]float64, order*4+2)
	xin1 := 1.0
	xin2 := 1.0
	N := order / 2

	for j := 0; j <= order; j++ {
		for i := 0; i < N; i++ {
			idx := i * 4
			xout1 := xin1 - 2.0*xfreq[2*i]*Wp[idx] + Wp[idx+1]
			xout2 := xin2 - 2.0*xfreq[2*i+1]*Wp[idx+2] + Wp[idx+3]
			Wp[idx+1] = Wp[idx]
			Wp[idx+3] = Wp[idx+2]
			Wp[idx] = xin1
			Wp[idx+2] = xin2
			xin1 = xout1
			xin2 = xout2
		}
		if N > 0 {
			n4Index := (N-1)*4 + 3
			xout1 := xin1 + Wp[n4Index+1]
			xout2 := xin2 - Wp[n4Index+2]
			ak[j] = 0.5 * (xout1 + xout2)
			Wp[n4Index+1] = xin1
			Wp[n4Index+2] = xin2
		} else {
			ak[j] = 1.0
		}
		xin1 = 0.0
		xin2 = 0.0
	}
}
