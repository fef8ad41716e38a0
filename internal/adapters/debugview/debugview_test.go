package debugview_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/keido/slouchd/internal/adapters/debugview"
	"github.com/keido/slouchd/internal/domain/model"
)

// grayFrame builds a uniform RGB frame.
func grayFrame(w, h int, v uint8) model.Frame {
	pixels := make([]uint8, w*h*3)
	for i := range pixels {
		pixels[i] = v
	}
	return model.Frame{Pixels: pixels, Width: w, Height: h}
}

func rowColor(img *image.RGBA, y int) color.RGBA {
	return img.RGBAAt(img.Bounds().Dx()/2, y)
}

func TestRenderer_Render(t *testing.T) {
	Convey("Given a renderer over a gray frame", t, func() {
		r := debugview.NewRenderer(debugview.WithDeviation(10))
		frame := grayFrame(64, 100, 0x80)

		Convey("When no baseline is latched", func() {
			img := r.Render(frame, model.PostureReport{})

			Convey("Then the frame comes back unannotated", func() {
				So(img.Bounds().Dx(), ShouldEqual, 64)
				So(img.Bounds().Dy(), ShouldEqual, 100)
				So(rowColor(img, 50), ShouldResemble, color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 255})
			})
		})

		Convey("When a baseline is latched", func() {
			report := model.PostureReport{Baseline: 50, HasBaseline: true}
			img := r.Render(frame, report)

			Convey("Then baseline and bound lines are drawn", func() {
				So(rowColor(img, 50), ShouldResemble, color.RGBA{R: 255, G: 255, B: 255, A: 255})
				So(rowColor(img, 60), ShouldResemble, color.RGBA{R: 200, G: 200, B: 200, A: 255})
				So(rowColor(img, 40), ShouldResemble, color.RGBA{R: 200, G: 200, B: 200, A: 255})
			})
		})

		Convey("When the subject has drifted past the threshold", func() {
			report := model.PostureReport{
				Baseline:    50,
				HasBaseline: true,
				Delta:       20,
				HasDelta:    true,
			}
			img := r.Render(frame, report)

			Convey("Then the current line is red", func() {
				So(rowColor(img, 70), ShouldResemble, color.RGBA{R: 255, A: 255})
			})
		})

		Convey("When the subject is drifting but within tolerance", func() {
			report := model.PostureReport{
				Baseline:    50,
				HasBaseline: true,
				Delta:       5,
				HasDelta:    true,
			}
			img := r.Render(frame, report)

			Convey("Then the current line is yellow", func() {
				So(rowColor(img, 55), ShouldResemble, color.RGBA{R: 255, G: 255, A: 255})
			})
		})

		Convey("When the subject sits at or above the baseline", func() {
			report := model.PostureReport{
				Baseline:    50,
				HasBaseline: true,
				Delta:       -8,
				HasDelta:    true,
			}
			img := r.Render(frame, report)

			Convey("Then the current line is green", func() {
				So(rowColor(img, 42), ShouldResemble, color.RGBA{G: 255, A: 255})
			})
		})

		Convey("When annotation lines fall outside the frame", func() {
			report := model.PostureReport{Baseline: 3, HasBaseline: true}

			Convey("Then rendering clips instead of panicking", func() {
				So(func() { r.Render(frame, report) }, ShouldNotPanic)
			})
		})
	})
}

func TestRenderer_PNG(t *testing.T) {
	Convey("Given a renderer", t, func() {
		r := debugview.NewRenderer()
		frame := grayFrame(32, 32, 0x40)

		Convey("When encoding a frame", func() {
			data, err := r.PNG(frame, model.PostureReport{Baseline: 16, HasBaseline: true})

			Convey("Then the output is a decodable PNG of the same size", func() {
				So(err, ShouldBeNil)

				img, err := png.Decode(bytes.NewReader(data))
				So(err, ShouldBeNil)
				So(img.Bounds().Dx(), ShouldEqual, 32)
				So(img.Bounds().Dy(), ShouldEqual, 32)
			})
		})
	})
}

func TestDrawLine(t *testing.T) {
	Convey("Given an empty image", t, func() {
		img := image.NewRGBA(image.Rect(0, 0, 10, 10))
		red := color.RGBA{R: 255, A: 255}

		Convey("When drawing a diagonal", func() {
			debugview.DrawLine(img, 0, 0, 9, 9, red)

			Convey("Then both endpoints and the middle are painted", func() {
				So(img.RGBAAt(0, 0), ShouldResemble, red)
				So(img.RGBAAt(5, 5), ShouldResemble, red)
				So(img.RGBAAt(9, 9), ShouldResemble, red)
				So(img.RGBAAt(9, 0), ShouldResemble, color.RGBA{})
			})
		})

		Convey("When the line runs off the image", func() {
			Convey("Then plotting clips instead of panicking", func() {
				So(func() { debugview.DrawLine(img, -5, -5, 15, 15, red) }, ShouldNotPanic)
				So(img.RGBAAt(5, 5), ShouldResemble, red)
			})
		})
	})
}
