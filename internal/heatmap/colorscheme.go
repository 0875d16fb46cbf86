package heatmap

import "image/color"

// A scheme maps normalized intensity [0,255] to an RGB color through a
// 256-entry lookup table built from gradient stops.
type scheme struct {
	name  string
	stops []stop
}

type stop struct {
	pos     float64 // 0..1
	r, g, b uint8
}

// DefaultScheme is used when an unknown scheme name is requested
const DefaultScheme = "sequential_blue"

var schemes = map[string]scheme{
	"sequential_blue": {name: "sequential_blue", stops: []stop{
		{0, 0, 0, 255}, {1, 0, 255, 128},
	}},
	"sequential_red": {name: "sequential_red", stops: []stop{
		{0, 0, 0, 0}, {0.4, 255, 0, 0}, {0.8, 255, 255, 0}, {1, 255, 255, 255},
	}},
	"sequential_green": {name: "sequential_green", stops: []stop{
		{0, 0, 128, 102}, {1, 255, 255, 102},
	}},
	"sequential_purple": {name: "sequential_purple", stops: []stop{
		{0, 13, 8, 135}, {0.5, 204, 71, 120}, {1, 240, 249, 33},
	}},
	"diverging_blue_red": {name: "diverging_blue_red", stops: []stop{
		{0, 59, 76, 192}, {0.5, 221, 221, 221}, {1, 180, 4, 38},
	}},
	"diverging_green_red": {name: "diverging_green_red", stops: []stop{
		{0, 255, 0, 0}, {0.25, 255, 255, 0}, {0.5, 0, 255, 0},
		{0.75, 0, 255, 255}, {1, 0, 0, 255},
	}},
	"diverging_blue_yellow": {name: "diverging_blue_yellow", stops: []stop{
		{0, 68, 1, 84}, {0.5, 33, 145, 140}, {1, 253, 231, 37},
	}},
	"categorical_5": {name: "categorical_5", stops: []stop{
		{0, 62, 38, 168}, {0.5, 39, 150, 235}, {1, 249, 251, 14},
	}},
	"categorical_7": {name: "categorical_7", stops: []stop{
		{0, 48, 18, 59}, {0.17, 62, 156, 254}, {0.33, 34, 235, 169},
		{0.5, 164, 252, 86}, {0.67, 253, 198, 39}, {0.83, 239, 85, 17},
		{1, 122, 4, 3},
	}},
	"rainbow": {name: "rainbow", stops: []stop{
		{0, 0, 0, 128}, {0.2, 0, 0, 255}, {0.4, 0, 255, 255},
		{0.6, 255, 255, 0}, {0.8, 255, 0, 0}, {1, 128, 0, 0},
	}},
}

// lookupScheme resolves a scheme name, falling back to the default for
// unknown names rather than erroring
func lookupScheme(name string) scheme {
	if s, ok := schemes[name]; ok {
		return s
	}
	return schemes[DefaultScheme]
}

// SchemeNames returns the set of supported color scheme names
func SchemeNames() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	return names
}

// lut builds the 256-entry color table by linear interpolation between
// the gradient stops
func (s scheme) lut() [256]color.RGBA {
	var table [256]color.RGBA

	for i := 0; i < 256; i++ {
		pos := float64(i) / 255
		table[i] = s.at(pos)
	}
	return table
}

func (s scheme) at(pos float64) color.RGBA {
	stops := s.stops
	if pos <= stops[0].pos {
		first := stops[0]
		return color.RGBA{first.r, first.g, first.b, 255}
	}

	for i := 1; i < len(stops); i++ {
		lo, hi := stops[i-1], stops[i]
		if pos > hi.pos {
			continue
		}
		span := hi.pos - lo.pos
		t := 0.0
		if span > 0 {
			t = (pos - lo.pos) / span
		}
		return color.RGBA{
			R: lerp(lo.r, hi.r, t),
			G: lerp(lo.g, hi.g, t),
			B: lerp(lo.b, hi.b, t),
			A: 255,
		}
	}

	last := stops[len(stops)-1]
	return color.RGBA{last.r, last.g, last.b, 255}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
