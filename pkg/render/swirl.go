package render

import "github.com/taigrr/retrorender/pkg/fixed"

// Swirl animation constants.
const (
	SwirlSteps   = 1024
	swirlSpeed   = 40
	swirlFactor  = fixed.FineAngles / 64
	swirlFactor2 = fixed.FineAngles / 32
	swirlAmp     = 2 // texels of displacement per wave, as a FineSine multiplier
)

// Swirl distorts liquid flats with two overlaid sine waves per axis. Offset
// tables are computed once per time step; a flat's distorted tile is rebuilt
// only when the time step changes, and never while paused.
type Swirl struct {
	offsets map[int][]uint16 // time step -> source offset per tile texel
	tiles   map[*Flat]*swirlTile
}

type swirlTile struct {
	step   int
	pixels []byte
}

// NewSwirl creates an empty swirl cache.
func NewSwirl() *Swirl {
	return &Swirl{
		offsets: make(map[int][]uint16),
		tiles:   make(map[*Flat]*swirlTile),
	}
}

// Offsets returns the offset table for a time step, computing it on first use.
func (s *Swirl) Offsets(step int) []uint16 {
	step &= SwirlSteps - 1
	if o, ok := s.offsets[step]; ok {
		return o
	}
	o := make([]uint16, FlatSize*FlatSize)
	i := step * swirlSpeed
	for y := range FlatSize {
		for x := range FlatSize {
			x1 := x + 128 +
				int(fixed.FineSine[(y*swirlFactor+i*5+900)&fixed.FineMask]*swirlAmp>>fixed.FracBits) +
				int(fixed.FineSine[(x*swirlFactor2+i*4+300)&fixed.FineMask]*swirlAmp>>fixed.FracBits)
			y1 := y + 128 +
				int(fixed.FineSine[(x*swirlFactor+i*3+700)&fixed.FineMask]*swirlAmp>>fixed.FracBits) +
				int(fixed.FineSine[(y*swirlFactor2+i*4+1200)&fixed.FineMask]*swirlAmp>>fixed.FracBits)
			o[y<<6|x] = uint16((y1&63)<<6 | x1&63)
		}
	}
	s.offsets[step] = o
	return o
}

// Distort returns the flat distorted for a game time. While paused the last
// distorted tile of the flat is returned untouched.
func (s *Swirl) Distort(flat *Flat, time int, paused bool) []byte {
	step := time & (SwirlSteps - 1)
	t, ok := s.tiles[flat]
	if ok && (paused || t.step == step) {
		return t.pixels
	}
	if !ok {
		t = &swirlTile{pixels: make([]byte, FlatSize*FlatSize)}
		s.tiles[flat] = t
	}
	for i, off := range s.Offsets(step) {
		t.pixels[i] = flat.Pixels[off]
	}
	t.step = step
	return t.pixels
}
