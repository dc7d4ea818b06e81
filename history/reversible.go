package history

type State int

const (
	NotStarted State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Reversible is a local command driven by a user gesture.
//
// Start moves it from NotStarted to Running. Update is polled once per tick while Running and
// returns true once the gesture concluded, at which point the command is Completed and its
// effect has been applied and replicated. Stop aborts a Running command. Undo and Redo apply
// the old and new state of the command's memento, and replicate it.
type Reversible interface {
	Start()
	Update() bool
	Stop()
	Undo() error
	Redo() error
	State() State
}

// Progress tracks the state of a command. Commands embed it.
type Progress struct {
	state State
}

func (p *Progress) State() State {
	return p.state
}

// Begin marks the command as Running.
func (p *Progress) Begin() {
	p.state = Running
}

// Complete marks the command as Completed.
func (p *Progress) Complete() {
	p.state = Completed
}

// Abort resets a Running command to NotStarted. It returns false if the command was not Running.
func (p *Progress) Abort() bool {
	if p.state != Running {
		return false
	}
	p.state = NotStarted
	return true
}
