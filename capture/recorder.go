package capture

import "github.com/egonelbre/exp-netcompress/netcode"

// Recorder is a netcode.Writer that forwards every call to another writer
// and records the packed fields per context.
type Recorder struct {
	netcode.Writer
	capture *Capture
}

var _ netcode.Writer = (*Recorder)(nil)

// NewRecorder wraps w. The capture is tied to w's model.
func NewRecorder(w netcode.Writer) *Recorder {
	return &Recorder{
		Writer:  w,
		capture: New(w.Model()),
	}
}

// NewRecorderInto wraps w and records into an existing capture, so that
// many messages can contribute to one session.
func NewRecorderInto(w netcode.Writer, c *Capture) *Recorder {
	if c.Fingerprint != w.Model().Fingerprint() {
		panic("capture: writer model does not match capture")
	}
	return &Recorder{Writer: w, capture: c}
}

// Capture returns the recorded data.
func (r *Recorder) Capture() *Capture { return r.capture }

func (r *Recorder) WritePackedNibble(value uint32, context int) {
	r.Writer.WritePackedNibble(value, context)
	r.capture.Stats(context).Counts[value]++
}

func (r *Recorder) WritePackedUInt(value uint32, context int) {
	r.Writer.WritePackedUInt(value, context)
	r.recordUInt(value, context)
}

func (r *Recorder) WritePackedIntDelta(value, baseline int32, context int) {
	r.Writer.WritePackedIntDelta(value, baseline, context)
	r.recordUInt(netcode.FoldDelta(uint32(baseline)-uint32(value)), context)
}

func (r *Recorder) WritePackedUIntDelta(value, baseline uint32, context int) {
	r.Writer.WritePackedUIntDelta(value, baseline, context)
	r.recordUInt(netcode.FoldDelta(baseline-value), context)
}

func (r *Recorder) recordUInt(value uint32, context int) {
	stats := r.capture.Stats(context)
	stats.Counts[netcode.BucketOf(value)]++
	stats.Values = append(stats.Values, value)
}
