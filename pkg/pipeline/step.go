package pipeline

// StepName identifies one stage of a multi-stage pipeline
type StepName string

const (
	StepRewriting  StepName = "rewriting"
	StepSearching  StepName = "searching"
	StepRanking    StepName = "ranking"
	StepRouting    StepName = "routing"
	StepRetrieving StepName = "retrieving"
	StepGenerating StepName = "generating"
	StepLoading    StepName = "loading"
)

// StepStatus is the lifecycle state of a ThinkingStep
type StepStatus string

const (
	StatusPending    StepStatus = "pending"
	StatusInProgress StepStatus = "in_progress"
	StatusComplete   StepStatus = "complete"
	StatusFailed     StepStatus = "failed"
)

// ThinkingStep is an observable progress record for one pipeline stage.
// Steps are produced in strict temporal order; an in-progress entry is
// replaced in place by its final record, never duplicated.
type ThinkingStep struct {
	Step   StepName   `json:"step"`
	Status StepStatus `json:"status"`
	Result string     `json:"result,omitempty"`
}

// StepObserver receives each step as it is appended or finalized,
// for progressive rendering. May be nil.
type StepObserver func(step ThinkingStep)

// Recorder accumulates ThinkingSteps for a single pipeline invocation.
// Not safe for concurrent use; one recorder per invocation.
type Recorder struct {
	steps    []ThinkingStep
	observer StepObserver
}

// NewRecorder creates a step recorder with an optional observer.
func NewRecorder(observer StepObserver) *Recorder {
	return &Recorder{observer: observer}
}

// Start appends a new in-progress step.
func (r *Recorder) Start(name StepName) {
	step := ThinkingStep{Step: name, Status: StatusInProgress}
	r.steps = append(r.steps, step)
	r.notify(step)
}

// Complete finalizes the current step in place with a result summary.
func (r *Recorder) Complete(result string) {
	r.finalize(StatusComplete, result)
}

// Fail finalizes the current step in place with a failure reason.
func (r *Recorder) Fail(reason string) {
	r.finalize(StatusFailed, reason)
}

// Steps returns the accumulated steps. Valid for display even when the
// invocation was abandoned mid-flight.
func (r *Recorder) Steps() []ThinkingStep {
	return r.steps
}

func (r *Recorder) finalize(status StepStatus, result string) {
	if len(r.steps) == 0 {
		return
	}
	last := &r.steps[len(r.steps)-1]
	last.Status = status
	last.Result = result
	r.notify(*last)
}

func (r *Recorder) notify(step ThinkingStep) {
	if r.observer != nil {
		r.observer(step)
	}
}
