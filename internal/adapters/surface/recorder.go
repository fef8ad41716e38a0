package surface

// Recorder is a test fake that records every call in order.
type Recorder struct {
	Calls     []string
	Opacities []uint32
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Show records a show call.
func (r *Recorder) Show() {
	r.Calls = append(r.Calls, "show")
}

// Hide records a hide call.
func (r *Recorder) Hide() {
	r.Calls = append(r.Calls, "hide")
}

// SetOpacity records the opacity value.
func (r *Recorder) SetOpacity(alpha uint32) error {
	r.Calls = append(r.Calls, "opacity")
	r.Opacities = append(r.Opacities, alpha)
	return nil
}
