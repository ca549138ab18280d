package core

// Timer represents a scheduled software event
type Timer struct {
	WakeTime uint64
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// TimerList is a wake-time ordered list of software timers.
// It is advanced from the clock event consumer on every tick.
type TimerList struct {
	head *Timer
}

// Schedule adds a timer to the list
func (l *TimerList) Schedule(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	l.insert(t)
}

// Cancel removes t if it is scheduled. Returns true if it was found.
func (l *TimerList) Cancel(t *Timer) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for p := &l.head; *p != nil; p = &(*p).Next {
		if *p == t {
			*p = t.Next
			t.Next = nil
			return true
		}
	}
	return false
}

// insert inserts a timer in sorted order by WakeTime.
// Timers with equal wake times run in insertion order.
func (l *TimerList) insert(t *Timer) {
	if l.head == nil || t.WakeTime < l.head.WakeTime {
		t.Next = l.head
		l.head = t
		return
	}

	current := l.head
	for current.Next != nil && current.Next.WakeTime <= t.WakeTime {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// Next returns the wake time of the earliest timer
func (l *TimerList) Next() (uint64, bool) {
	if l.head == nil {
		return 0, false
	}
	return l.head.WakeTime, true
}

// Len returns the number of scheduled timers
func (l *TimerList) Len() int {
	n := 0
	for t := l.head; t != nil; t = t.Next {
		n++
	}
	return n
}

// Dispatch runs all timers with WakeTime <= now and returns how many ran
func (l *TimerList) Dispatch(now uint64) int {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	ran := 0
	for l.head != nil && l.head.WakeTime <= now {
		timer := l.head
		l.head = timer.Next
		timer.Next = nil // Clear Next pointer to avoid circular references

		ran++
		if timer.Handler(timer) == SF_RESCHEDULE {
			l.insert(timer)
		}
	}
	return ran
}
