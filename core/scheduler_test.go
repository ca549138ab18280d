package core

import "testing"

func TestTimerListOrdering(t *testing.T) {
	var list TimerList
	var order []uint64

	handler := func(tm *Timer) uint8 {
		order = append(order, tm.WakeTime)
		return SF_DONE
	}

	for _, wake := range []uint64{30, 10, 20, 10} {
		list.Schedule(&Timer{WakeTime: wake, Handler: handler})
	}

	if got := list.Len(); got != 4 {
		t.Fatalf("Expected 4 timers, got %d", got)
	}
	if next, ok := list.Next(); !ok || next != 10 {
		t.Errorf("Expected next wake 10, got %d (ok=%v)", next, ok)
	}

	if ran := list.Dispatch(20); ran != 3 {
		t.Errorf("Expected 3 timers to run at 20, got %d", ran)
	}
	want := []uint64{10, 10, 20}
	for i, w := range want {
		if order[i] != w {
			t.Errorf("Timer %d: expected wake %d, got %d", i, w, order[i])
		}
	}
	if got := list.Len(); got != 1 {
		t.Errorf("Expected 1 timer left, got %d", got)
	}
}

func TestTimerListReschedule(t *testing.T) {
	var list TimerList
	fired := 0

	tm := &Timer{WakeTime: 100}
	tm.Handler = func(tm *Timer) uint8 {
		fired++
		tm.WakeTime += 100
		return SF_RESCHEDULE
	}
	list.Schedule(tm)

	for now := uint64(0); now <= 1000; now += 50 {
		list.Dispatch(now)
	}

	if fired != 10 {
		t.Errorf("Expected 10 fires over 1000 ticks, got %d", fired)
	}
	if next, _ := list.Next(); next != 1100 {
		t.Errorf("Expected next wake 1100, got %d", next)
	}
}

func TestTimerListCancel(t *testing.T) {
	var list TimerList
	a := &Timer{WakeTime: 1, Handler: func(*Timer) uint8 { return SF_DONE }}
	b := &Timer{WakeTime: 2, Handler: func(*Timer) uint8 { return SF_DONE }}
	list.Schedule(a)
	list.Schedule(b)

	if !list.Cancel(a) {
		t.Fatal("Cancel of scheduled timer returned false")
	}
	if list.Cancel(a) {
		t.Error("Cancel of removed timer returned true")
	}
	if next, _ := list.Next(); next != 2 {
		t.Errorf("Expected next wake 2, got %d", next)
	}
}

func TestTimerConversions(t *testing.T) {
	var now uint64 = 42
	SetClock(func() uint64 { return now }, 1000000)
	defer SetClock(nil, 0)

	if got := GetTime(); got != 42 {
		t.Errorf("GetTime() = %d, want 42", got)
	}
	if got := TimerFromUS(1500); got != 1500 {
		t.Errorf("TimerFromUS(1500) = %d, want 1500", got)
	}
	if got := TimerToUS(2000000); got != 2000000 {
		t.Errorf("TimerToUS(2000000) = %d, want 2000000", got)
	}
}
