// Package conversation holds the per-sender review dialogue: the pure
// transition function and the registry that owns every sender's state.
package conversation

// Step names the four points of the dialogue.
type Step string

const (
	StepAwaitingStart   Step = "awaiting_start"
	StepAwaitingProduct Step = "awaiting_product"
	StepAwaitingName    Step = "awaiting_name"
	StepAwaitingReview  Step = "awaiting_review"
)

// State is one of AwaitingStart, AwaitingProduct, AwaitingName or
// AwaitingReview. Each variant carries exactly the answers collected so far.
type State interface {
	Step() Step
	sealed()
}

type AwaitingStart struct{}

type AwaitingProduct struct{}

type AwaitingName struct {
	Product string
}

type AwaitingReview struct {
	Product string
	Name    string
}

func (AwaitingStart) Step() Step   { return StepAwaitingStart }
func (AwaitingProduct) Step() Step { return StepAwaitingProduct }
func (AwaitingName) Step() Step    { return StepAwaitingName }
func (AwaitingReview) Step() Step  { return StepAwaitingReview }

func (AwaitingStart) sealed()   {}
func (AwaitingProduct) sealed() {}
func (AwaitingName) sealed()    {}
func (AwaitingReview) sealed()  {}

// Initial is the state of a sender that has never written, or whose last
// review was saved.
func Initial() State { return AwaitingStart{} }

// StepOf is nil-safe; a nil state reports an empty step.
func StepOf(s State) Step {
	if s == nil {
		return ""
	}
	return s.Step()
}
