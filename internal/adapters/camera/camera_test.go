package camera_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/keido/slouchd/internal/adapters/camera"
	"github.com/keido/slouchd/internal/domain/model"
)

// pixel returns the RGB triple at (x, y).
func pixel(f model.Frame, x, y int) [3]uint8 {
	base := (y*f.Width + x) * 3
	return [3]uint8{f.Pixels[base], f.Pixels[base+1], f.Pixels[base+2]}
}

func TestCamera_New(t *testing.T) {
	Convey("Given the source factory", t, func() {
		Convey("When asking for the synthetic source", func() {
			source, err := camera.New("synthetic")

			Convey("Then it is constructed", func() {
				So(err, ShouldBeNil)
				So(source, ShouldNotBeNil)
			})
		})

		Convey("When asking for an unknown source", func() {
			_, err := camera.New("v4l2")

			Convey("Then construction fails with the sentinel", func() {
				So(errors.Is(err, camera.ErrUnknownSource), ShouldBeTrue)
			})
		})
	})
}

func TestSyntheticSource(t *testing.T) {
	Convey("Given a synthetic source with a fixed trace", t, func() {
		ctx := context.Background()

		source := camera.NewSyntheticSource(
			camera.WithSize(64, 48),
			camera.WithTrace([]float64{0.25, 0.75}),
		)

		Convey("When rendering the first frame", func() {
			frame, err := source.NextFrame(ctx)

			Convey("Then the subject band sits at a quarter height", func() {
				So(err, ShouldBeNil)
				So(frame.Width, ShouldEqual, 64)
				So(frame.Height, ShouldEqual, 48)
				So(len(frame.Pixels), ShouldEqual, 64*48*3)

				// Band center at 0.25 * 48 = 12.
				So(pixel(frame, 32, 12), ShouldResemble, [3]uint8{0x30, 0x30, 0x30})
				So(pixel(frame, 32, 0), ShouldResemble, [3]uint8{0xc8, 0xc8, 0xc8})
			})
		})

		Convey("When rendering past the end of the trace", func() {
			first, err := source.NextFrame(ctx)
			So(err, ShouldBeNil)
			_, err = source.NextFrame(ctx)
			So(err, ShouldBeNil)
			third, err := source.NextFrame(ctx)
			So(err, ShouldBeNil)

			Convey("Then the trace loops", func() {
				So(third.Pixels, ShouldResemble, first.Pixels)
			})
		})

		Convey("When the source is closed", func() {
			So(source.Close(), ShouldBeNil)
			_, err := source.NextFrame(ctx)

			Convey("Then frames fail with the closed sentinel", func() {
				So(errors.Is(err, camera.ErrClosed), ShouldBeTrue)
			})
		})

		Convey("When the context is already canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := source.NextFrame(canceled)

			Convey("Then the call fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a synthetic source with a rotation correction", t, func() {
		ctx := context.Background()

		source := camera.NewSyntheticSource(
			camera.WithSize(64, 48),
			camera.WithRotation(180),
			camera.WithTrace([]float64{0.25}),
		)

		Convey("When rendering a frame", func() {
			frame, err := source.NextFrame(ctx)

			Convey("Then the band lands mirrored to three quarters height", func() {
				So(err, ShouldBeNil)
				// Band center 12 maps to 48-1-12 = 35 after 180 degrees.
				So(pixel(frame, 32, 35), ShouldResemble, [3]uint8{0x30, 0x30, 0x30})
				So(pixel(frame, 32, 12), ShouldResemble, [3]uint8{0xc8, 0xc8, 0xc8})
			})
		})
	})
}

func TestRotate(t *testing.T) {
	Convey("Given a tiny 2x1 frame", t, func() {
		frame := model.Frame{
			Pixels: []uint8{1, 2, 3, 4, 5, 6},
			Width:  2,
			Height: 1,
		}

		Convey("When rotating by 90 degrees", func() {
			out := camera.Rotate(frame, 90)

			Convey("Then dimensions swap and pixels move clockwise", func() {
				So(out.Width, ShouldEqual, 1)
				So(out.Height, ShouldEqual, 2)
				So(out.Pixels, ShouldResemble, []uint8{1, 2, 3, 4, 5, 6})
			})
		})

		Convey("When rotating by 180 degrees", func() {
			out := camera.Rotate(frame, 180)

			Convey("Then the pixel order reverses", func() {
				So(out.Width, ShouldEqual, 2)
				So(out.Height, ShouldEqual, 1)
				So(out.Pixels, ShouldResemble, []uint8{4, 5, 6, 1, 2, 3})
			})
		})

		Convey("When rotating by 270 degrees", func() {
			out := camera.Rotate(frame, 270)

			Convey("Then pixels move counterclockwise", func() {
				So(out.Width, ShouldEqual, 1)
				So(out.Height, ShouldEqual, 2)
				So(out.Pixels, ShouldResemble, []uint8{4, 5, 6, 1, 2, 3})
			})
		})

		Convey("When the angle is not a recognized correction", func() {
			out := camera.Rotate(frame, 45)

			Convey("Then the frame is returned unchanged", func() {
				So(out, ShouldResemble, frame)
			})
		})
	})
}
