package activity

// Auto-close reasons reported to Recorder.
const (
	ReasonStart = "start"
	ReasonSweep = "sweep"
)

// End outcomes reported to Recorder.
const (
	OutcomeEnded    = "ended"
	OutcomeReplayed = "replayed"
)

// Recorder observes lifecycle events after they are committed.
type Recorder interface {
	SessionStarted(source string)
	SessionHeartbeat()
	SessionAutoClosed(reason string)
	SessionEnded(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) SessionStarted(string)    {}
func (noopRecorder) SessionHeartbeat()        {}
func (noopRecorder) SessionAutoClosed(string) {}
func (noopRecorder) SessionEnded(string)      {}
