package metrics_test

import (
	"testing"

	"github.com/keido/slouchd/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithRegistry(registry))

		Convey("Then all metrics register without collision", func() {
			So(m, ShouldNotBeNil)

			families, err := registry.Gather()
			So(err, ShouldBeNil)
			// Counters without observations are still registered but not
			// gathered; a second manager on the same registry would panic,
			// which is the real collision check.
			So(families, ShouldNotBeNil)
		})

		Convey("And a second manager on the same registry panics on duplicates", func() {
			So(func() {
				metrics.NewManager(metrics.WithRegistry(registry))
			}, ShouldPanic)
		})
	})

	Convey("Given the global helpers", t, func() {
		Convey("Then recording through them does not panic", func() {
			So(func() {
				metrics.RecordFrameProcessed()
				metrics.RecordFrameFailure()
				metrics.RecordInferenceFailure()
				metrics.RecordInferenceLatency(12.5)
				metrics.RecordSampleRejected()
				metrics.UpdateDebounceCount(7)
				metrics.UpdatePostureDelta(-3.2)
				metrics.UpdateAlertState(true)
				metrics.UpdateAlertState(false)
				metrics.RecordAlertEpisode()
				metrics.UpdateOverlayAlpha(90)
				metrics.RecordSurfaceShow()
				metrics.RecordSurfaceHide()
				metrics.RecordCommandDrop()
				metrics.RecordStoreError()
				metrics.RecordHTTPRequest("status", "GET", "200")
				metrics.RecordHTTPRequestDuration("status", "GET", "200", 1.5)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry is exposed for the metrics endpoint", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})
	})
}
