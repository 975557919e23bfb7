package codec2

// Delta LSP quantizer tables for the 3200 mode: the first coefficient is
// coded absolutely, the rest as the difference from the coefficient below,
// all in Hz. Each table is a uniform grid over the coefficient's range;
// widths are 7,7,6,6,5,5,4,4,3,3 bits for 50 bits total.

type lspdRange struct {
	bits int
	min  float64
	max  float64
}

var lspdRanges = []lspdRange{
	{7, 50, 600},  // absolute position of the first LSP
	{7, 25, 500},  // differences from here down
	{6, 25, 500},
	{6, 25, 600},
	{5, 25, 600},
	{5, 25, 600},
	{4, 25, 600},
	{4, 25, 600},
	{3, 25, 600},
	{3, 25, 500},
}

var lspdCb []LspCodebook

func uniformGrid(min, max float64, levels int) []float64 {
	cb := make([]float64, levels)
	step := (max - min) / float64(levels-1)
	for i := 0; i < levels; i++ {
		cb[i] = min + step*float64(i)
	}
	return cb
}

func init() {
	lspdCb = make([]LspCodebook, len(lspdRanges))
	for i, r := range lspdRanges {
		m := 1 << r.bits
		lspdCb[i] = LspCodebook{
			K:     1,
			Log2M: r.bits,
			M:     m,
			CB:    uniformGrid(r.min, r.max, m),
		}
	}
}
