// Package codec2 implements an ultra-low-bitrate sinusoidal speech codec
// operating on 8kHz mono 16-bit PCM. Seven operating points from 3200 down
// to 700 bits/s share one analysis/synthesis engine and differ only in how
// the model parameters are quantized and packed.
//
// A Codec2 instance carries inter-frame state and is not safe for
// concurrent use: encode and decode calls against one instance must be
// strictly sequential. Instances are fully independent of each other, so
// one instance per stream (or per direction) is the intended concurrency
// model.
package codec2

import (
	"errors"
	"fmt"
	"math"
)

// Mode selects the codec operating point. The numeric values match the mode
// byte recorded in .c2 stream headers.
type Mode int

const (
	Mode3200 Mode = 0
	Mode2400 Mode = 1
	Mode1600 Mode = 2
	Mode1400 Mode = 3
	Mode1300 Mode = 4
	Mode1200 Mode = 5
	Mode700C Mode = 8
)

// Caller contract violations. Everything else (silence, clipping,
// adversarial bit patterns) is handled internally and never surfaces as an
// error.
var (
	ErrInvalidMode        = errors.New("codec2: invalid mode")
	ErrInvalidFrameLength = errors.New("codec2: invalid frame length")
)

type modeInfo struct {
	name            string
	samplesPerFrame int
	bitsPerFrame    int
	framesPerSecond int
}

var modeTable = map[Mode]modeInfo{
	Mode3200: {"3200", 160, 64, 50},
	Mode2400: {"2400", 160, 48, 50},
	Mode1600: {"1600", 320, 64, 25},
	Mode1400: {"1400", 320, 56, 25},
	Mode1300: {"1300", 320, 52, 25},
	Mode1200: {"1200", 320, 48, 25},
	Mode700C: {"700C", 320, 28, 25},
}

func (m Mode) String() string {
	if info, ok := modeTable[m]; ok {
		return info.name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a mode name like "3200" or "700C" to its Mode value.
func ParseMode(s string) (Mode, error) {
	for m, info := range modeTable {
		if info.name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Codec2 is one codec instance: a fixed mode plus all the mutable
// inter-frame state the encoder and decoder pipelines thread from call to
// call.
type Codec2 struct {
	mode Mode
	info modeInfo

	c2const    C2Const
	nSubframes int // 10ms analysis subframes per frame

	fftFwdCfg FFT
	fftInvCfg FFT

	w  []float64 // analysis window (length MPitch)
	W  []float64 // frequency-domain analysis window (length FFTSize)
	Pn []float64 // trapezoidal synthesis window (length 2*NSamp)

	Sn    []float64 // analysis buffer (length MPitch)
	SnSyn []float64 // synthesis overlap-add buffer (length 2*NSamp)

	nlp       *NLP
	prevF0Enc float64

	xqEnc []float64 // encoder joint Wo/E quantizer memory
	xqDec []float64 // decoder joint Wo/E quantizer memory

	prevModel Model     // previous frame's decoded model
	prevE     float64   // previous frame's decoded energy
	prevLsps  []float64 // previous frame's decoded LSPs

	exPhase float64 // excitation phase track
	bgEst   float64 // background noise estimate for the postfilter
	rng     uint64  // phase dither PRNG state

	lpcPF     bool
	bassBoost bool
	beta      float64
	gamma     float64

	// 700C decoder state.
	prevRateK  []float64
	prevWo700  float64
	prevV700   bool
}

// New creates a codec instance bound to the given mode for its lifetime.
// All history buffers start at mode-appropriate neutral defaults (lowest
// pitch, unvoiced, unit energy).
func New(mode Mode) (*Codec2, error) {
	info, ok := modeTable[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}

	c := &Codec2{
		mode:       mode,
		info:       info,
		nSubframes: info.samplesPerFrame / SamplesPerSubFrame,
		c2const: C2Const{
			Fs:     SampleRate,
			NSamp:  SamplesPerSubFrame,
			MaxAmp: int(math.Floor(float64(SampleRate) * PMaxS / 2)),
			PMin:   int(math.Floor(float64(SampleRate) * PMinS)),
			PMax:   int(math.Floor(float64(SampleRate) * PMaxS)),
			MPitch: int(math.Floor(float64(SampleRate) * MPitchS)),
			WoMin:  TWO_PI / math.Floor(float64(SampleRate)*PMaxS),
			WoMax:  TWO_PI / math.Floor(float64(SampleRate)*PMinS),
			Nw:     279,
			Tw:     int(float64(SampleRate) * TWS),
		},
		prevF0Enc: 1 / PMaxS,
		rng:       1,
	}

	c.fftFwdCfg = NewFFT(FFTSize)
	c.fftInvCfg = NewFFT(FFTSize)

	c.w, c.W = makeAnalysisWindow(&c.c2const, c.fftFwdCfg)
	c.Pn = makeSynthesisWindow(&c.c2const)

	c.Sn = make([]float64, c.c2const.MPitch)
	for i := range c.Sn {
		c.Sn[i] = 1.0
	}
	c.SnSyn = make([]float64, 2*c.c2const.NSamp)

	c.nlp = nlpCreate(&c.c2const)

	c.xqEnc = make([]float64, 2)
	c.xqDec = make([]float64, 2)

	c.prevModel = newModel()
	c.prevModel.Wo = TWO_PI / float64(c.c2const.PMax)
	c.prevModel.L = int(PI / c.prevModel.Wo)
	c.prevE = 1

	c.prevLsps = make([]float64, LpcOrder)
	for i := 0; i < LpcOrder; i++ {
		c.prevLsps[i] = float64(i+1) * math.Pi / float64(LpcOrder+1)
	}

	c.lpcPF = true
	c.bassBoost = true
	c.beta = 0.2
	c.gamma = 0.5

	c.prevRateK = make([]float64, rateK)
	c.prevWo700 = TWO_PI * 100.0 / float64(SampleRate)

	return c, nil
}

// Mode returns the operating point the instance was created with.
func (c *Codec2) Mode() Mode { return c.mode }

// SamplesPerFrame returns the PCM frame length for this instance's mode.
func (c *Codec2) SamplesPerFrame() int { return c.info.samplesPerFrame }

// BitsPerFrame returns the number of payload bits per packed frame.
func (c *Codec2) BitsPerFrame() int { return c.info.bitsPerFrame }

// BytesPerFrame returns the packed frame size; trailing pad bits are zero.
func (c *Codec2) BytesPerFrame() int { return (c.info.bitsPerFrame + 7) / 8 }

// FramesPerSecond returns the frame rate for this instance's mode.
func (c *Codec2) FramesPerSecond() int { return c.info.framesPerSecond }

// Encode analyses one PCM frame and packs the quantized model parameters
// into a bit frame. The input length must equal SamplesPerFrame; on a
// length mismatch the instance state is left untouched.
func (c *Codec2) Encode(pcm []int16) ([]byte, error) {
	if len(pcm) != c.info.samplesPerFrame {
		return nil, fmt.Errorf("%w: got %d samples, want %d", ErrInvalidFrameLength, len(pcm), c.info.samplesPerFrame)
	}

	speech := make([]float64, len(pcm))
	for i, s := range pcm {
		speech[i] = float64(s)
	}

	bits := make([]byte, c.BytesPerFrame())
	switch c.mode {
	case Mode3200:
		c.encode3200(bits, speech)
	case Mode2400:
		c.encode2400(bits, speech)
	case Mode1600:
		c.encode1600(bits, speech)
	case Mode1400:
		c.encode1400(bits, speech)
	case Mode1300:
		c.encode1300(bits, speech)
	case Mode1200:
		c.encode1200(bits, speech)
	case Mode700C:
		c.encode700C(bits, speech)
	}
	return bits, nil
}

// Decode unpacks one bit frame and synthesizes a PCM frame. The input
// length must equal BytesPerFrame. Any bit pattern of the right length
// decodes: out-of-range indexes are clamped, never rejected.
func (c *Codec2) Decode(bits []byte) ([]int16, error) {
	if len(bits) != c.BytesPerFrame() {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidFrameLength, len(bits), c.BytesPerFrame())
	}

	speech := make([]int16, c.info.samplesPerFrame)
	switch c.mode {
	case Mode3200:
		c.decode3200(speech, bits)
	case Mode2400:
		c.decode2400(speech, bits)
	case Mode1600:
		c.decode1600(speech, bits)
	case Mode1400:
		c.decode1400(speech, bits)
	case Mode1300:
		c.decode1300(speech, bits)
	case Mode1200:
		c.decode1200(speech, bits)
	case Mode700C:
		c.decode700C(speech, bits)
	}
	return speech, nil
}

// --- 3200: 2 voicing, Wo 7, E 5, LSP deltas 50 ---

func (c *Codec2) encode3200(bits []byte, speech []float64) {
	n := c.c2const.NSamp
	var nbit uint
	model := newModel()

	c.analyzeOneFrame(speech[:n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)

	c.analyzeOneFrame(speech[n:2*n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)

	packBits(bits, &nbit, encodeWo(&c.c2const, model.Wo), WoBits)

	e, lsps, _ := speechToUQLSPS(c.Sn, c.w, c.c2const.MPitch, LpcOrder)
	packBits(bits, &nbit, encodeEnergy(e), EBits)

	lspd := make([]int, LpcOrder)
	encodeLSPDeltaScalar(lspd, lsps, LpcOrder)
	for i := 0; i < LpcOrder; i++ {
		packBits(bits, &nbit, lspd[i], uint(lspDeltaBits(i)))
	}
}

func (c *Codec2) decode3200(speech []int16, bits []byte) {
	var nbit uint
	models := []Model{newModel(), newModel()}
	lsps := [][]float64{make([]float64, LpcOrder), make([]float64, LpcOrder)}

	models[0].Voiced = unpackBits(bits, &nbit, 1) != 0
	models[1].Voiced = unpackBits(bits, &nbit, 1) != 0

	models[1].Wo = decodeWo(&c.c2const, unpackBits(bits, &nbit, WoBits))
	models[1].L = int(PI / models[1].Wo)
	models[1].E = decodeEnergy(unpackBits(bits, &nbit, EBits))

	lspd := make([]int, LpcOrder)
	for i := 0; i < LpcOrder; i++ {
		lspd[i] = unpackBits(bits, &nbit, uint(lspDeltaBits(i)))
	}
	decodeLSPDeltaScalar(lsps[1], lspd, LpcOrder)
	checkLspOrder(lsps[1], LpcOrder)
	bwExpandLsps(lsps[1], LpcOrder, 50.0, 100.0)

	interpWo(&models[0], &c.prevModel, &models[1], c.c2const.WoMin)
	models[0].E = interpEnergy(c.prevE, models[1].E)
	interpolateLsp(lsps[0], c.prevLsps, lsps[1], 0.5, LpcOrder)

	c.synthesizeLPCFrames(models, lsps, speech)
	c.updateDecodeState(&models[1], models[1].E, lsps[1])
}

// --- 2400: 2 voicing, joint WoE 8, LSP scalar 36, 2 spare ---

func (c *Codec2) encode2400(bits []byte, speech []float64) {
	n := c.c2const.NSamp
	var nbit uint
	model := newModel()

	c.analyzeOneFrame(speech[:n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)

	c.analyzeOneFrame(speech[n:2*n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)

	e, lsps, _ := speechToUQLSPS(c.Sn, c.w, c.c2const.MPitch, LpcOrder)
	packBits(bits, &nbit, encodeWoE(&model, e, c.xqEnc), WoEBits)

	lspIndexes := make([]int, LpcOrder)
	encodeLSPScalar(lspIndexes, lsps, LpcOrder)
	for i := 0; i < LpcOrder; i++ {
		packBits(bits, &nbit, lspIndexes[i], uint(lspBits(i)))
	}

	packBits(bits, &nbit, 0, 2) // spare
}

func (c *Codec2) decode2400(speech []int16, bits []byte) {
	var nbit uint
	models := []Model{newModel(), newModel()}
	lsps := [][]float64{make([]float64, LpcOrder), make([]float64, LpcOrder)}

	models[0].Voiced = unpackBits(bits, &nbit, 1) != 0
	models[1].Voiced = unpackBits(bits, &nbit, 1) != 0

	woE := unpackBits(bits, &nbit, WoEBits)
	decodeWoE(&c.c2const, &models[1], &models[1].E, c.xqDec, woE)

	lspIndexes := make([]int, LpcOrder)
	for i := 0; i < LpcOrder; i++ {
		lspIndexes[i] = unpackBits(bits, &nbit, uint(lspBits(i)))
	}
	decodeLSPScalar(lsps[1], lspIndexes, LpcOrder)
	checkLspOrder(lsps[1], LpcOrder)
	bwExpandLsps(lsps[1], LpcOrder, 50.0, 100.0)

	interpWo(&models[0], &c.prevModel, &models[1], c.c2const.WoMin)
	models[0].E = interpEnergy(c.prevE, models[1].E)
	interpolateLsp(lsps[0], c.prevLsps, lsps[1], 0.5, LpcOrder)

	c.synthesizeLPCFrames(models, lsps, speech)
	c.updateDecodeState(&models[1], models[1].E, lsps[1])
}

// --- 1600: 4 voicing, Wo+E at subframes 2 and 4, LSP scalar 36 ---

func (c *Codec2) encode1600(bits []byte, speech []float64) {
	n := c.c2const.NSamp
	var nbit uint
	model := newModel()

	c.analyzeOneFrame(speech[:n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)

	c.analyzeOneFrame(speech[n:2*n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)
	packBits(bits, &nbit, encodeWo(&c.c2const, model.Wo), WoBits)
	e1, _, _ := speechToUQLSPS(c.Sn, c.w, c.c2const.MPitch, LpcOrder)
	packBits(bits, &nbit, encodeEnergy(e1), EBits)

	c.analyzeOneFrame(speech[2*n:3*n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)

	c.analyzeOneFrame(speech[3*n:4*n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)
	packBits(bits, &nbit, encodeWo(&c.c2const, model.Wo), WoBits)
	e2, lsps, _ := speechToUQLSPS(c.Sn, c.w, c.c2const.MPitch, LpcOrder)
	packBits(bits, &nbit, encodeEnergy(e2), EBits)

	lspIndexes := make([]int, LpcOrder)
	encodeLSPScalar(lspIndexes, lsps, LpcOrder)
	for i := 0; i < LpcOrder; i++ {
		packBits(bits, &nbit, lspIndexes[i], uint(lspBits(i)))
	}
}

func (c *Codec2) decode1600(speech []int16, bits []byte) {
	var nbit uint
	models := make([]Model, 4)
	lsps := make([][]float64, 4)
	for i := range models {
		models[i] = newModel()
		lsps[i] = make([]float64, LpcOrder)
	}

	models[0].Voiced = unpackBits(bits, &nbit, 1) != 0
	models[1].Voiced = unpackBits(bits, &nbit, 1) != 0
	models[1].Wo = decodeWo(&c.c2const, unpackBits(bits, &nbit, WoBits))
	models[1].L = int(PI / models[1].Wo)
	models[1].E = decodeEnergy(unpackBits(bits, &nbit, EBits))

	models[2].Voiced = unpackBits(bits, &nbit, 1) != 0
	models[3].Voiced = unpackBits(bits, &nbit, 1) != 0
	models[3].Wo = decodeWo(&c.c2const, unpackBits(bits, &nbit, WoBits))
	models[3].L = int(PI / models[3].Wo)
	models[3].E = decodeEnergy(unpackBits(bits, &nbit, EBits))

	lspIndexes := make([]int, LpcOrder)
	for i := 0; i < LpcOrder; i++ {
		lspIndexes[i] = unpackBits(bits, &nbit, uint(lspBits(i)))
	}
	decodeLSPScalar(lsps[3], lspIndexes, LpcOrder)
	checkLspOrder(lsps[3], LpcOrder)
	bwExpandLsps(lsps[3], LpcOrder, 50.0, 100.0)

	interpWo(&models[0], &c.prevModel, &models[1], c.c2const.WoMin)
	models[0].E = interpEnergy(c.prevE, models[1].E)
	interpWo(&models[2], &models[1], &models[3], c.c2const.WoMin)
	models[2].E = interpEnergy(models[1].E, models[3].E)
	for i := 0; i < 3; i++ {
		interpolateLsp(lsps[i], c.prevLsps, lsps[3], float64(i+1)*0.25, LpcOrder)
	}

	c.synthesizeLPCFrames(models, lsps, speech)
	c.updateDecodeState(&models[3], models[3].E, lsps[3])
}

// --- 1400: 4 voicing, joint WoE at subframes 2 and 4, LSP scalar 36 ---

func (c *Codec2) encode1400(bits []byte, speech []float64) {
	n := c.c2const.NSamp
	var nbit uint
	model := newModel()

	c.analyzeOneFrame(speech[:n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)

	c.analyzeOneFrame(speech[n:2*n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)
	e1, _, _ := speechToUQLSPS(c.Sn, c.w, c.c2const.MPitch, LpcOrder)
	packBits(bits, &nbit, encodeWoE(&model, e1, c.xqEnc), WoEBits)

	c.analyzeOneFrame(speech[2*n:3*n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)

	c.analyzeOneFrame(speech[3*n:4*n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)
	e2, lsps, _ := speechToUQLSPS(c.Sn, c.w, c.c2const.MPitch, LpcOrder)
	packBits(bits, &nbit, encodeWoE(&model, e2, c.xqEnc), WoEBits)

	lspIndexes := make([]int, LpcOrder)
	encodeLSPScalar(lspIndexes, lsps, LpcOrder)
	for i := 0; i < LpcOrder; i++ {
		packBits(bits, &nbit, lspIndexes[i], uint(lspBits(i)))
	}
}

func (c *Codec2) decode1400(speech []int16, bits []byte) {
	var nbit uint
	models := make([]Model, 4)
	lsps := make([][]float64, 4)
	for i := range models {
		models[i] = newModel()
		lsps[i] = make([]float64, LpcOrder)
	}

	models[0].Voiced = unpackBits(bits, &nbit, 1) != 0
	models[1].Voiced = unpackBits(bits, &nbit, 1) != 0
	decodeWoE(&c.c2const, &models[1], &models[1].E, c.xqDec, unpackBits(bits, &nbit, WoEBits))

	models[2].Voiced = unpackBits(bits, &nbit, 1) != 0
	models[3].Voiced = unpackBits(bits, &nbit, 1) != 0
	decodeWoE(&c.c2const, &models[3], &models[3].E, c.xqDec, unpackBits(bits, &nbit, WoEBits))

	lspIndexes := make([]int, LpcOrder)
	for i := 0; i < LpcOrder; i++ {
		lspIndexes[i] = unpackBits(bits, &nbit, uint(lspBits(i)))
	}
	decodeLSPScalar(lsps[3], lspIndexes, LpcOrder)
	checkLspOrder(lsps[3], LpcOrder)
	bwExpandLsps(lsps[3], LpcOrder, 50.0, 100.0)

	interpWo(&models[0], &c.prevModel, &models[1], c.c2const.WoMin)
	models[0].E = interpEnergy(c.prevE, models[1].E)
	interpWo(&models[2], &models[1], &models[3], c.c2const.WoMin)
	models[2].E = interpEnergy(models[1].E, models[3].E)
	for i := 0; i < 3; i++ {
		interpolateLsp(lsps[i], c.prevLsps, lsps[3], float64(i+1)*0.25, LpcOrder)
	}

	c.synthesizeLPCFrames(models, lsps, speech)
	c.updateDecodeState(&models[3], models[3].E, lsps[3])
}

// --- 1300: 4 voicing, Wo 7, E 5, LSP scalar 36 (52 bits) ---

func (c *Codec2) encode1300(bits []byte, speech []float64) {
	n := c.c2const.NSamp
	var nbit uint
	model := newModel()

	for i := 0; i < c.nSubframes; i++ {
		c.analyzeOneFrame(speech[i*n:(i+1)*n], &model)
		packBits(bits, &nbit, boolToInt(model.Voiced), 1)
	}

	packBits(bits, &nbit, encodeWo(&c.c2const, model.Wo), WoBits)

	e, lsps, _ := speechToUQLSPS(c.Sn, c.w, c.c2const.MPitch, LpcOrder)
	packBits(bits, &nbit, encodeEnergy(e), EBits)

	lspIndexes := make([]int, LpcOrder)
	encodeLSPScalar(lspIndexes, lsps, LpcOrder)
	for i := 0; i < LpcOrder; i++ {
		packBits(bits, &nbit, lspIndexes[i], uint(lspBits(i)))
	}
}

func (c *Codec2) decode1300(speech []int16, bits []byte) {
	var nbit uint
	models := make([]Model, 4)
	lsps := make([][]float64, 4)
	for i := range models {
		models[i] = newModel()
		lsps[i] = make([]float64, LpcOrder)
	}

	for i := 0; i < 4; i++ {
		models[i].Voiced = unpackBits(bits, &nbit, 1) != 0
	}

	models[3].Wo = decodeWo(&c.c2const, unpackBits(bits, &nbit, WoBits))
	models[3].L = int(PI / models[3].Wo)
	models[3].E = decodeEnergy(unpackBits(bits, &nbit, EBits))

	lspIndexes := make([]int, LpcOrder)
	for i := 0; i < LpcOrder; i++ {
		lspIndexes[i] = unpackBits(bits, &nbit, uint(lspBits(i)))
	}
	decodeLSPScalar(lsps[3], lspIndexes, LpcOrder)
	checkLspOrder(lsps[3], LpcOrder)
	bwExpandLsps(lsps[3], LpcOrder, 50.0, 100.0)

	for i := 0; i < 3; i++ {
		weight := float64(i+1) * 0.25
		interpWo2(&models[i], &c.prevModel, &models[3], weight, c.c2const.WoMin)
		models[i].E = interpEnergy2(c.prevE, models[3].E, weight)
		interpolateLsp(lsps[i], c.prevLsps, lsps[3], weight, LpcOrder)
	}

	c.synthesizeLPCFrames(models, lsps, speech)
	c.updateDecodeState(&models[3], models[3].E, lsps[3])
}

// --- 1200: 4 voicing, joint WoE x2, staged LSP VQ 27, 1 spare ---

func (c *Codec2) encode1200(bits []byte, speech []float64) {
	n := c.c2const.NSamp
	var nbit uint
	model := newModel()

	c.analyzeOneFrame(speech[:n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)

	c.analyzeOneFrame(speech[n:2*n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)
	e1, _, _ := speechToUQLSPS(c.Sn, c.w, c.c2const.MPitch, LpcOrder)
	packBits(bits, &nbit, encodeWoE(&model, e1, c.xqEnc), WoEBits)

	c.analyzeOneFrame(speech[2*n:3*n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)

	c.analyzeOneFrame(speech[3*n:4*n], &model)
	packBits(bits, &nbit, boolToInt(model.Voiced), 1)
	e2, lsps, _ := speechToUQLSPS(c.Sn, c.w, c.c2const.MPitch, LpcOrder)
	packBits(bits, &nbit, encodeWoE(&model, e2, c.xqEnc), WoEBits)

	lspIndexes := make([]int, lspVQStagesN)
	encodeLspVQ(lspIndexes, lsps, LpcOrder)
	for i := 0; i < lspVQStagesN; i++ {
		packBits(bits, &nbit, lspIndexes[i], lspVQStageBits)
	}

	packBits(bits, &nbit, 0, 1) // spare
}

func (c *Codec2) decode1200(speech []int16, bits []byte) {
	var nbit uint
	models := make([]Model, 4)
	lsps := make([][]float64, 4)
	for i := range models {
		models[i] = newModel()
		lsps[i] = make([]float64, LpcOrder)
	}

	models[0].Voiced = unpackBits(bits, &nbit, 1) != 0
	models[1].Voiced = unpackBits(bits, &nbit, 1) != 0
	decodeWoE(&c.c2const, &models[1], &models[1].E, c.xqDec, unpackBits(bits, &nbit, WoEBits))

	models[2].Voiced = unpackBits(bits, &nbit, 1) != 0
	models[3].Voiced = unpackBits(bits, &nbit, 1) != 0
	decodeWoE(&c.c2const, &models[3], &models[3].E, c.xqDec, unpackBits(bits, &nbit, WoEBits))

	lspIndexes := make([]int, lspVQStagesN)
	for i := 0; i < lspVQStagesN; i++ {
		lspIndexes[i] = unpackBits(bits, &nbit, lspVQStageBits)
	}
	decodeLspVQ(lsps[3], lspIndexes, LpcOrder)
	checkLspOrder(lsps[3], LpcOrder)
	bwExpandLsps(lsps[3], LpcOrder, 50.0, 100.0)

	interpWo(&models[0], &c.prevModel, &models[1], c.c2const.WoMin)
	models[0].E = interpEnergy(c.prevE, models[1].E)
	interpWo(&models[2], &models[1], &models[3], c.c2const.WoMin)
	models[2].E = interpEnergy(models[1].E, models[3].E)
	for i := 0; i < 3; i++ {
		interpolateLsp(lsps[i], c.prevLsps, lsps[3], float64(i+1)*0.25, LpcOrder)
	}

	c.synthesizeLPCFrames(models, lsps, speech)
	c.updateDecodeState(&models[3], models[3].E, lsps[3])
}

// --- 700C: Wo+voicing 6, energy 4, rate-K VQ 9+9 ---

func (c *Codec2) encode700C(bits []byte, speech []float64) {
	n := c.c2const.NSamp
	var nbit uint
	model := newModel()

	// Average the envelope over all four subframes so a transient in the
	// final 10 ms does not own the whole frame. Wo and voicing still come
	// from the last subframe.
	ratekdB := make([]float64, rateK)
	for i := 0; i < c.nSubframes; i++ {
		c.analyzeOneFrame(speech[i*n:(i+1)*n], &model)
		sub := resampleRateK(&model)
		for k := range ratekdB {
			ratekdB[k] += sub[k]
		}
	}
	for k := range ratekdB {
		ratekdB[k] /= float64(c.nSubframes)
	}

	mean := 0.0
	for _, v := range ratekdB {
		mean += v
	}
	mean /= float64(rateK)

	target := make([]float64, rateK)
	for i := range target {
		target[i] = ratekdB[i] - mean
	}
	vqIndexes := searchStages(rateKVQStages, rateK, target)

	packBits(bits, &nbit, encodeWo700(model.Wo, model.Voiced), newampWoBits)
	packBits(bits, &nbit, encodeMean700(mean), newampEBits)
	packBits(bits, &nbit, vqIndexes[0], rateKVQStageBits)
	packBits(bits, &nbit, vqIndexes[1], rateKVQStageBits)
}

func (c *Codec2) decode700C(speech []int16, bits []byte) {
	var nbit uint

	wo, voiced := decodeWo700(unpackBits(bits, &nbit, newampWoBits))
	mean := decodeMean700(unpackBits(bits, &nbit, newampEBits))

	ratekdB := make([]float64, rateK)
	for _, stage := range rateKVQStages {
		idx := unpackBits(bits, &nbit, rateKVQStageBits)
		entries := len(stage) / rateK
		if idx >= entries {
			idx = entries - 1
		}
		for i := 0; i < rateK; i++ {
			ratekdB[i] += stage[idx*rateK+i]
		}
	}
	for i := range ratekdB {
		ratekdB[i] += mean
	}
	rateKPostfilter(ratekdB)

	n := c.c2const.NSamp
	interpRateK := make([]float64, rateK)
	H := make([]COMP, MAX_AMP+1)
	for i := 0; i < c.nSubframes; i++ {
		weight := float64(i+1) * 0.25

		for k := 0; k < rateK; k++ {
			interpRateK[k] = (1.0-weight)*c.prevRateK[k] + weight*ratekdB[k]
		}

		model := newModel()
		if i < 2 {
			model.Voiced = c.prevV700
		} else {
			model.Voiced = voiced
		}
		model.Wo = math.Exp((1.0-weight)*math.Log(c.prevWo700) + weight*math.Log(wo))
		if model.Wo < c.c2const.WoMin {
			model.Wo = c.c2const.WoMin
		}
		if model.Wo > c.c2const.WoMax {
			model.Wo = c.c2const.WoMax
		}
		model.L = int(PI / model.Wo)

		resampleHarmonics(&model, interpRateK)
		c.determinePhase(&model, interpRateK, H)
		c.synthesizeOneFrame(&model, speech[i*n:], H, 1.0)
	}

	copy(c.prevRateK, ratekdB)
	c.prevWo700 = wo
	c.prevV700 = voiced
}

// --- shared decode plumbing ---

// synthesizeLPCFrames converts the decoded LSPs of each subframe to an LPC
// spectral envelope, replaces the model amplitudes with samples of that
// envelope, and synthesizes the subframes back to back.
func (c *Codec2) synthesizeLPCFrames(models []Model, lsps [][]float64, speech []int16) {
	n := c.c2const.NSamp
	ak := make([]float64, LpcOrder+1)
	Aw := make([]COMP, FFTSize)
	H := make([]COMP, MAX_AMP+1)
	for i := range models {
		lspToLpc(lsps[i], ak, LpcOrder)
		aksToM2(c.fftFwdCfg, ak, LpcOrder, &models[i], models[i].E, c.lpcPF, c.bassBoost, c.beta, c.gamma, Aw)
		applyLpcCorrection(&models[i])
		samplePhase(&models[i], H, Aw)
		c.synthesizeOneFrame(&models[i], speech[n*i:], H, 1.0)
	}
}

func (c *Codec2) updateDecodeState(model *Model, e float64, lsps []float64) {
	c.prevModel = *model
	c.prevE = e
	copy(c.prevLsps, lsps)
}
