package config_test

import (
	"testing"

	"github.com/keido/slouchd/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have the recognized defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9180")
			convey.So(cfg.ModelInputSize, convey.ShouldEqual, 256)
			convey.So(cfg.DisplayWidth, convey.ShouldEqual, 640)
			convey.So(cfg.DisplayHeight, convey.ShouldEqual, 480)
			convey.So(cfg.DeviationThreshold, convey.ShouldEqual, 10.0)
			convey.So(cfg.ConfidenceThreshold, convey.ShouldEqual, 0.3)
			convey.So(cfg.CameraRotation, convey.ShouldEqual, 180)
			convey.So(cfg.TrackedKeypoint, convey.ShouldEqual, 2)
			convey.So(cfg.DebounceFrames, convey.ShouldEqual, 15)
			convey.So(cfg.MaxAlpha, convey.ShouldEqual, 180)
			convey.So(cfg.FadeSpeed, convey.ShouldEqual, 15)
			convey.So(cfg.FrameIntervalMS, convey.ShouldEqual, 33)
			convey.So(cfg.CameraSource, convey.ShouldEqual, "synthetic")
			convey.So(cfg.InferenceEngine, convey.ShouldEqual, "scripted")
			convey.So(cfg.EpisodeDB, convey.ShouldEqual, "")
		})
	})
}
