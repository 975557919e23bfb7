package codec2

// Scalar LSP quantizer tables, one per coefficient, in Hz.

var codes0 = []float64{
	225, 250, 275, 300, 325, 350, 375, 400,
	425, 450, 475, 500, 525, 550, 575, 600,
}
var codes1 = []float64{
	325, 350, 375, 400, 425, 450, 475, 500,
	525, 550, 575, 600, 625, 650, 675, 700,
}
var codes2 = []float64{
	500, 550, 600, 650, 700, 750, 800, 850,
	900, 950, 1000, 1050, 1100, 1150, 1200, 1250,
}
var codes3 = []float64{
	700, 800, 900, 1000, 1100, 1200, 1300, 1400,
	1500, 1600, 1700, 1800, 1900, 2000, 2100, 2200,
}
var codes4 = []float64{
	950, 1050, 1150, 1250, 1350, 1450, 1550, 1650,
	1750, 1850, 1950, 2050, 2150, 2250, 2350, 2450,
}
var codes5 = []float64{
	1100, 1200, 1300, 1400, 1500, 1600, 1700, 1800,
	1900, 2000, 2100, 2200, 2300, 2400, 2500, 2600,
}
var codes6 = []float64{
	1500, 1600, 1700, 1800, 1900, 2000, 2100, 2200,
	2300, 2400, 2500, 2600, 2700, 2800, 2900, 3000,
}
var codes7 = []float64{
	2300, 2400, 2500, 2600, 2700, 2800, 2900, 3000,
}
var codes8 = []float64{
	2500, 2600, 2700, 2800, 2900, 3000, 3100, 3200,
}
var codes9 = []float64{
	2900, 3100, 3300, 3500,
}

// lspCb is the scalar LSP codebook set: 4 bits for each of the first seven
// coefficients, then 3, 3 and 2 — 36 bits total.
var lspCb = []LspCodebook{
	{K: 1, Log2M: 4, M: 16, CB: codes0},
	{K: 1, Log2M: 4, M: 16, CB: codes1},
	{K: 1, Log2M: 4, M: 16, CB: codes2},
	{K: 1, Log2M: 4, M: 16, CB: codes3},
	{K: 1, Log2M: 4, M: 16, CB: codes4},
	{K: 1, Log2M: 4, M: 16, CB: codes5},
	{K: 1, Log2M: 4, M: 16, CB: codes6},
	{K: 1, Log2M: 3, M: 8, CB: codes7},
	{K: 1, Log2M: 3, M: 8, CB: codes8},
	{K: 1, Log2M: 2, M: 4, CB: codes9},
}
