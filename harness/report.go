package harness

// A HopResult is the outcome of one single-direction copy between two
// regions, plus the verification verdict over the copied bytes.
type HopResult struct {
	Mode    string
	SrcName string
	DstName string
	SrcAddr uint64
	DstAddr uint64
	Pass    bool
	Err     error
}

// Verdict renders the per-hop verdict the way the log line shows it.
func (r HopResult) Verdict() string {
	if r.Pass {
		return "OK"
	}
	return "NG"
}

// A Report collects the hop results of one run in execution order.
type Report struct {
	Hops []HopResult
}

// AllPassed reports whether every executed hop verified clean.
func (r Report) AllPassed() bool {
	for _, hop := range r.Hops {
		if !hop.Pass {
			return false
		}
	}
	return true
}

// A HopRecorder receives every hop result as it is produced. The
// recording package provides a SQLite-backed implementation.
type HopRecorder interface {
	RecordHop(r HopResult)
}
