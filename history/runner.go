package history

// Runner drives the active gesture from the tick loop and records completed commands.
type Runner struct {
	history *History
	active  Reversible
	next    func() Reversible
}

// NewRunner returns a runner recording into h. When next is not nil, it is called to start a
// new gesture each time the previous one completes, the way a tool stays armed.
func NewRunner(h *History, next func() Reversible) *Runner {
	return &Runner{history: h, next: next}
}

func (r *Runner) History() *History {
	return r.history
}

func (r *Runner) Active() Reversible {
	return r.active
}

// Run aborts the active gesture and starts action.
func (r *Runner) Run(action Reversible) {
	r.Stop()
	r.active = action
	action.Start()
}

// Stop aborts the active gesture.
func (r *Runner) Stop() {
	if r.active != nil && r.active.State() == Running {
		r.active.Stop()
	}
	r.active = nil
}

// SetNext replaces the factory used to start gestures.
func (r *Runner) SetNext(next func() Reversible) {
	r.next = next
}

// Tick polls the active gesture. It returns true when a command completed during this tick.
func (r *Runner) Tick() bool {
	if r.active == nil {
		r.arm()
		return false
	}
	if r.active.State() != Running {
		// The gesture could not start.
		r.active = nil
		return false
	}
	if !r.active.Update() {
		return false
	}
	r.history.Add(r.active)
	r.active = nil
	r.arm()
	return true
}

func (r *Runner) arm() {
	if r.next == nil {
		return
	}
	if action := r.next(); action != nil {
		r.active = action
		action.Start()
	}
}

func (r *Runner) Undo() error {
	r.Stop()
	return r.history.Undo()
}

func (r *Runner) Redo() error {
	r.Stop()
	return r.history.Redo()
}
