package codec2

// Staged LSP vector quantizer for the 1200 mode: three 9-bit stages over the
// full 10-dimensional LSP vector in Hz, organized as a split product code.
// Each stage carries a uniform grid over three or four of the coefficients
// (covering the same per-coefficient ranges as the scalar tables) and holds
// the rest at zero, so the stage sum quantizes every coefficient
// independently. Trained stages can be dropped in without touching the
// search or bit layout.

const (
	lspVQStageBits = 9
	lspVQStagesN   = 3
)

var lspVQStages [][]float64

// per-coefficient ranges in Hz, matching the scalar tables
var lspVQRanges = [LpcOrder][2]float64{
	{225, 600},
	{325, 700},
	{500, 1250},
	{700, 2200},
	{950, 2450},
	{1100, 2600},
	{1500, 3000},
	{2300, 3000},
	{2500, 3200},
	{2900, 3500},
}

func init() {
	entries := 1 << lspVQStageBits

	mid := func(i int) float64 {
		return (lspVQRanges[i][0] + lspVQRanges[i][1]) / 2
	}
	grid := func(i, level, levels int) float64 {
		lo, hi := lspVQRanges[i][0], lspVQRanges[i][1]
		return lo + (hi-lo)*float64(level)/float64(levels-1)
	}

	// Stage one: 8x8x8 grid over the first three coefficients. The
	// remaining coefficients hold their range midpoints so a lone stage
	// one index still decodes to a sane vector.
	stage1 := make([]float64, entries*LpcOrder)
	for j := 0; j < entries; j++ {
		v := stage1[j*LpcOrder : (j+1)*LpcOrder]
		v[0] = grid(0, (j>>6)&7, 8)
		v[1] = grid(1, (j>>3)&7, 8)
		v[2] = grid(2, j&7, 8)
		for i := 3; i < LpcOrder; i++ {
			v[i] = mid(i)
		}
	}

	// Stage two: midpoint corrections for coefficients 3..5, 8x8x8.
	stage2 := make([]float64, entries*LpcOrder)
	for j := 0; j < entries; j++ {
		v := stage2[j*LpcOrder : (j+1)*LpcOrder]
		v[3] = grid(3, (j>>6)&7, 8) - mid(3)
		v[4] = grid(4, (j>>3)&7, 8) - mid(4)
		v[5] = grid(5, j&7, 8) - mid(5)
	}

	// Stage three: corrections for coefficients 6..9, 8x4x4x4.
	stage3 := make([]float64, entries*LpcOrder)
	for j := 0; j < entries; j++ {
		v := stage3[j*LpcOrder : (j+1)*LpcOrder]
		v[6] = grid(6, (j>>6)&7, 8) - mid(6)
		v[7] = grid(7, (j>>4)&3, 4) - mid(7)
		v[8] = grid(8, (j>>2)&3, 4) - mid(8)
		v[9] = grid(9, j&3, 4) - mid(9)
	}

	lspVQStages = [][]float64{stage1, stage2, stage3}
}
