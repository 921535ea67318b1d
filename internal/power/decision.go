package power

// Decision is the outcome of the post-enable check.
type Decision int8

const (
	Fail      Decision = -1
	Undecided Decision = 0
	Pass      Decision = 1
)

func (d Decision) String() string {
	switch d {
	case Undecided:
		return "undecided"
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Terminal reports whether d can no longer change.
func (d Decision) Terminal() bool {
	return d == Pass || d == Fail
}

// latch holds a Decision that moves out of Undecided at most once.
type latch struct {
	value Decision
}

// set stores d if the latch is still open and d is terminal. It reports
// whether the value changed.
func (l *latch) set(d Decision) bool {
	if l.value.Terminal() || !d.Terminal() {
		return false
	}
	l.value = d
	return true
}

func (l *latch) get() Decision { return l.value }
