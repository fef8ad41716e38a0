// Package debugview renders the annotated monitor frame served by the debug
// endpoint: the camera image with the baseline, the current eye position and
// the threshold bounds drawn as horizontal lines. Purely cosmetic.
package debugview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/keido/slouchd/internal/domain/model"
)

// Annotation colors.
var (
	colorBaseline = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorGood     = color.RGBA{G: 255, A: 255}
	colorDrifting = color.RGBA{R: 255, G: 255, A: 255}
	colorBad      = color.RGBA{R: 255, A: 255}
	colorBound    = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// Default renderer configuration constants.
const defaultDeviation = 10.0

// Renderer draws posture annotations over camera frames.
type Renderer struct {
	deviation float64
}

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithDeviation sets the deviation threshold used for the bound lines and
// the line color coding.
func WithDeviation(deviation float64) Option {
	return func(r *Renderer) {
		if deviation > 0 {
			r.deviation = deviation
		}
	}
}

// NewRenderer creates a renderer with configuration options.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		deviation: defaultDeviation,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Render paints the frame with the report's annotations. With no latched
// baseline the frame is returned unannotated.
func (r *Renderer) Render(frame model.Frame, report model.PostureReport) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for i := 0; i < frame.Width*frame.Height; i++ {
		img.Pix[i*4] = frame.Pixels[i*3]
		img.Pix[i*4+1] = frame.Pixels[i*3+1]
		img.Pix[i*4+2] = frame.Pixels[i*3+2]
		img.Pix[i*4+3] = 255
	}

	if !report.HasBaseline {
		return img
	}

	baseline := int(report.Baseline)
	drawHorizontal(img, baseline, colorBaseline)
	drawHorizontal(img, baseline+int(r.deviation), colorBound)
	drawHorizontal(img, baseline-int(r.deviation), colorBound)

	if report.HasDelta {
		drawHorizontal(img, int(report.Baseline+report.Delta), r.lineColor(report.Delta))
	}

	return img
}

// PNG renders the frame and encodes it.
func (r *Renderer) PNG(frame model.Frame, report model.PostureReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Render(frame, report)); err != nil {
		return nil, fmt.Errorf("encode debug frame: %w", err)
	}
	return buf.Bytes(), nil
}

// lineColor codes the current-position line: red past the threshold, yellow
// while drifting down, green otherwise.
func (r *Renderer) lineColor(delta float64) color.RGBA {
	switch {
	case delta > r.deviation:
		return colorBad
	case delta > 0:
		return colorDrifting
	default:
		return colorGood
	}
}

// drawHorizontal draws a full-width horizontal line, clipped to the image.
func drawHorizontal(img *image.RGBA, y int, c color.RGBA) {
	bounds := img.Bounds()
	if y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		img.SetRGBA(x, y, c)
	}
}

// DrawLine draws an arbitrary line with Bresenham's algorithm, clipped to the
// image. The horizontal annotations above do not need it, but skeleton
// overlays do.
func DrawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	dy := -abs(y1 - y0)
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		plot(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func plot(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
