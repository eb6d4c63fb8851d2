// internal/domain/order/progress.go
package order

// Steps is the fixed progress track shown for an order
var Steps = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

// StepState is how a step is drawn
type StepState string

const (
	StepCompleted StepState = "completed"
	StepCurrent   StepState = "current"
	StepPending   StepState = "pending"
)

// Step is one entry of the progress indicator
type Step struct {
	Status Status    `json:"status"`
	Label  string    `json:"label"`
	State  StepState `json:"state"`
}

var stepLabels = map[Status]string{
	StatusPending:    "Order Placed",
	StatusProcessing: "Processing",
	StatusShipped:    "Shipped",
	StatusDelivered:  "Delivered",
}

// StepIndex returns the position of status in Steps, or -1. Cancelled
// orders have no position.
func StepIndex(status Status) int {
	for i, s := range Steps {
		if s == status {
			return i
		}
	}
	return -1
}

// Progress returns the four steps with their state for status. With no
// current index every step is pending.
func Progress(status Status) []Step {
	current := StepIndex(status)

	steps := make([]Step, len(Steps))
	for i, s := range Steps {
		state := StepPending
		switch {
		case current < 0:
		case i < current:
			state = StepCompleted
		case i == current:
			state = StepCurrent
		}
		steps[i] = Step{Status: s, Label: stepLabels[s], State: state}
	}
	return steps
}

// CanCancel reports whether the cancel control is offered
func CanCancel(status Status) bool {
	switch status {
	case StatusShipped, StatusDelivered, StatusCancelled:
		return false
	default:
		return true
	}
}

// View is what the tracking page renders
type View struct {
	Order       *Order        `json:"order"`
	Steps       []Step        `json:"steps"`
	CurrentStep int           `json:"currentStep"`
	CanCancel   bool          `json:"canCancel"`
	History     []StatusEvent `json:"statusHistory"`
}

// BuildView derives the tracking view from an order projection
func BuildView(o *Order) View {
	return View{
		Order:       o,
		Steps:       Progress(o.OrderStatus),
		CurrentStep: StepIndex(o.OrderStatus),
		CanCancel:   CanCancel(o.OrderStatus),
		History:     o.StatusHistory,
	}
}
