// Package heatmap accumulates gaze points into a 2D density field and
// renders it as a color-mapped image.
package heatmap

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/events"
	"github.com/corlabs/gaze-analytics-go/internal/models"
	"github.com/corlabs/gaze-analytics-go/internal/stats"
)

// Render modes
const (
	ModeDensity  = "density"
	ModeFixation = "fixation"
	ModeSaccade  = "saccade"
)

// field is the mutable accumulation grid. It is owned exclusively by one
// Render call; no aliasing, no locking.
type field struct {
	w, h int
	data []float64
}

func newField(w, h int) *field {
	return &field{w: w, h: h, data: make([]float64, w*h)}
}

func (f *field) add(x, y int, v float64) {
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return
	}
	f.data[y*f.w+x] += v
}

func (f *field) set(x, y int, v float64) {
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return
	}
	f.data[y*f.w+x] = v
}

// Engine renders gaze point sequences into color-mapped density images.
// The zero-value configuration is not usable; construct via NewEngine.
type Engine struct {
	cfg        config.HeatmapConfig
	classifier *events.Classifier
}

// NewEngine creates a heatmap engine. The classifier drives the fixation
// and saccade render modes.
func NewEngine(cfg config.HeatmapConfig, classifier *events.Classifier) *Engine {
	return &Engine{cfg: cfg, classifier: classifier}
}

// Render produces a width x height RGBA image for the given mode
// ("density", "fixation" or "saccade"; empty string means density).
// Unrecognized modes fall back to density, like unknown color schemes
// fall back to the default scheme. Empty input yields a valid all-zero
// image of the requested size. Non-positive dimensions or resolution
// factor fail fast.
func (e *Engine) Render(points []models.GazePoint, width, height int, mode string) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid heatmap dimensions %dx%d", width, height)
	}
	if e.cfg.ResolutionFactor <= 0 {
		return nil, fmt.Errorf("invalid resolution factor %v", e.cfg.ResolutionFactor)
	}

	switch mode {
	case ModeFixation:
		return e.renderFixations(points, width, height), nil
	case ModeSaccade:
		return e.renderSaccades(points, width, height), nil
	case ModeDensity, "":
		return e.renderDensity(points, width, height), nil
	default:
		log.Printf("[HeatmapEngine] Unknown mode %q, falling back to density", mode)
		return e.renderDensity(points, width, height), nil
	}
}

// renderDensity deposits a Gaussian blob per qualifying point on a grid
// scaled by the resolution factor, then normalizes, colorizes and
// upscales back to the target size.
func (e *Engine) renderDensity(points []models.GazePoint, width, height int) *image.RGBA {
	gw := int(float64(width) * e.cfg.ResolutionFactor)
	gh := int(float64(height) * e.cfg.ResolutionFactor)
	if gw < 1 {
		gw = 1
	}
	if gh < 1 {
		gh = 1
	}

	grid := newField(gw, gh)

	if len(points) == 0 {
		log.Printf("[HeatmapEngine] No gaze points provided for heatmap generation")
	}

	kernel := gaussianKernel(e.cfg.BlurRadius)
	radius := e.cfg.BlurRadius

	deposited := 0
	for _, p := range points {
		// Points below the gate are skipped entirely, not zero-weighted
		if p.Confidence < e.cfg.MinConfidence {
			continue
		}

		x := int(p.X * float64(gw))
		y := int(p.Y * float64(gh))
		if x < 0 || x >= gw || y < 0 || y >= gh {
			continue
		}

		weight := p.Confidence * e.cfg.IntensityMultiplier
		for ky := -radius; ky <= radius; ky++ {
			for kx := -radius; kx <= radius; kx++ {
				grid.add(x+kx, y+ky, kernel[ky+radius][kx+radius]*weight)
			}
		}
		deposited++
	}

	if len(points) > 0 {
		log.Printf("[HeatmapEngine] Deposited %d/%d gaze points", deposited, len(points))
	}

	img := e.colorize(grid)
	if gw != width || gh != height {
		img = upscale(img, width, height)
	}
	return img
}

// renderFixations paints a filled circle per fixation with a linear
// falloff from the center, at the target resolution.
func (e *Engine) renderFixations(points []models.GazePoint, width, height int) *image.RGBA {
	grid := newField(width, height)

	for _, f := range e.classifier.DetectFixations(points) {
		cx := int(f.X * float64(width))
		cy := int(f.Y * float64(height))
		if cx < 0 || cx >= width || cy < 0 || cy >= height {
			continue
		}

		radius := int(f.DurationMS / 10)
		if radius < 5 {
			radius = 5
		} else if radius > 50 {
			radius = 50
		}

		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				dist := math.Sqrt(float64(dx*dx + dy*dy))
				if dist > float64(radius) {
					continue
				}
				weight := (1 - dist/float64(radius)) * f.Intensity / 1000
				grid.add(cx+dx, cy+dy, weight)
			}
		}
	}

	return e.colorize(grid)
}

// renderSaccades strokes a 3-pixel-wide segment between the points
// surrounding each flagged index.
func (e *Engine) renderSaccades(points []models.GazePoint, width, height int) *image.RGBA {
	grid := newField(width, height)

	for _, idx := range e.classifier.DetectSaccades(points) {
		if idx <= 0 || idx >= len(points)-1 {
			continue
		}
		from := points[idx-1]
		to := points[idx+1]
		stroke(grid,
			from.X*float64(width), from.Y*float64(height),
			to.X*float64(width), to.Y*float64(height))
	}

	return e.colorize(grid)
}

// stroke draws a 3-pixel-wide line segment into the field
func stroke(f *field, x0, y0, x1, y1 float64) {
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0)))
	if steps < 1 {
		steps = 1
	}

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(x0 + (x1-x0)*t)
		y := int(y0 + (y1-y0)*t)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				f.set(x+dx, y+dy, 1.0)
			}
		}
	}
}

// colorize min-max normalizes the field to [0,255] and maps it through
// the configured color scheme. An all-zero field stays all-zero (black
// at the low end of the scheme) rather than dividing by zero.
func (e *Engine) colorize(grid *field) *image.RGBA {
	min := stats.Min(grid.data)
	max := stats.Max(grid.data)

	lut := lookupScheme(e.cfg.ColorScheme).lut()
	img := image.NewRGBA(image.Rect(0, 0, grid.w, grid.h))

	for y := 0; y < grid.h; y++ {
		for x := 0; x < grid.w; x++ {
			level := 0
			if max > 0 {
				if max > min {
					level = int((grid.data[y*grid.w+x] - min) / (max - min) * 255)
				} else {
					level = 255
				}
			}
			if level < 0 {
				level = 0
			} else if level > 255 {
				level = 255
			}
			img.SetRGBA(x, y, lut[level])
		}
	}
	return img
}

// upscale resizes with linear interpolation back to the target size
func upscale(src *image.RGBA, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Overlay alpha-blends the heatmap over a background frame. The heatmap
// is resized to the background's dimensions when they differ.
func (e *Engine) Overlay(background image.Image, heat *image.RGBA) *image.RGBA {
	bounds := background.Bounds()
	if heat.Bounds() != bounds {
		heat = upscale(heat, bounds.Dx(), bounds.Dy())
	}

	alpha := e.cfg.AlphaTransparency
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			br, bg, bb, _ := background.At(x, y).RGBA()
			hc := heat.RGBAAt(x-bounds.Min.X, y-bounds.Min.Y)

			out.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.RGBA{
				R: blend(uint8(br>>8), hc.R, alpha),
				G: blend(uint8(bg>>8), hc.G, alpha),
				B: blend(uint8(bb>>8), hc.B, alpha),
				A: 255,
			})
		}
	}
	return out
}

func blend(background, heat uint8, alpha float64) uint8 {
	v := float64(background)*(1-alpha) + float64(heat)*alpha
	if v < 0 {
		v = 0
	} else if v > 255 {
		v = 255
	}
	return uint8(v)
}
