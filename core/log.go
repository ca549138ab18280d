package core

// Level orders log messages by severity. Lower values are more severe.
type Level uint8

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the short lowercase name of the level
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	}
	return "level" + Itoa(int(l))
}

// LogWriter receives every message at or above the configured level.
// component names the driver that produced it ("intc", "timer", ...).
type LogWriter func(level Level, component, msg string)

// EventType identifies an entry in the event ring
type EventType uint8

// Event type codes
const (
	EvtCascade    EventType = 1 // Cascade handler dispatched a line
	EvtSpurious   EventType = 2 // Cascade fired with nothing pending
	EvtTimerFire  EventType = 3 // Clock event interrupt handled
	EvtNextEvent  EventType = 4 // Clock event reprogrammed
	EvtModeChange EventType = 5 // Clock event mode changed
	EvtRestart    EventType = 6 // Machine restart requested
)

// Event captures a single interrupt or timer event for post-mortem analysis
type Event struct {
	Type  EventType
	IRQ   uint16 // Interrupt number or line, depending on Type
	Clock uint64 // Software clock at the time of the event
	Value uint32 // Context-dependent value
}

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// logWriter is the platform log sink; no-op until a target installs one
	logWriter LogWriter = func(Level, string, string) {}

	// logLevel is the most verbose level that reaches the writer
	logLevel = LevelInfo

	// Event ring buffer (non-blocking, safe to use from interrupt context)
	eventRing     [EventRingSize]Event
	eventRingHead uint8
	eventsEnabled = true
)

// SetLogWriter sets the platform-specific log output function.
// A nil writer silences logging.
func SetLogWriter(w LogWriter) {
	if w == nil {
		w = func(Level, string, string) {}
	}
	logWriter = w
}

// SetLogLevel sets the most verbose level that is still written
func SetLogLevel(l Level) {
	logLevel = l
}

// GetLogLevel returns the current log level
func GetLogLevel() Level {
	return logLevel
}

// Log writes msg for component if level is enabled
func Log(level Level, component, msg string) {
	if level > logLevel {
		return
	}
	logWriter(level, component, msg)
}

func Error(component, msg string) { Log(LevelError, component, msg) }
func Warn(component, msg string)  { Log(LevelWarn, component, msg) }
func Info(component, msg string)  { Log(LevelInfo, component, msg) }
func Debug(component, msg string) { Log(LevelDebug, component, msg) }

// SetEventsEnabled turns event capture on or off
func SetEventsEnabled(enabled bool) {
	eventsEnabled = enabled
}

// RecordEvent captures an event in the ring buffer.
// Always non-blocking; the oldest entry is overwritten.
func RecordEvent(typ EventType, irq uint16, value uint32) {
	if !eventsEnabled {
		return
	}
	idx := eventRingHead
	eventRing[idx] = Event{
		Type:  typ,
		IRQ:   irq,
		Clock: GetTime(),
		Value: value,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the recorded events from oldest to newest
func Events() []Event {
	out := make([]Event, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.Type == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

func (t EventType) String() string {
	switch t {
	case EvtCascade:
		return "CASCADE"
	case EvtSpurious:
		return "SPURIOUS!"
	case EvtTimerFire:
		return "TIMER_FIRE"
	case EvtNextEvent:
		return "NEXT_EVENT"
	case EvtModeChange:
		return "MODE"
	case EvtRestart:
		return "RESTART"
	}
	return "UNKNOWN"
}

// DumpEventRing writes the event ring through the log writer.
// Call on shutdown, restart or after a fatal error.
func DumpEventRing() {
	const component = "events"
	logWriter(LevelInfo, component, "=== Event Ring Dump ===")
	for _, evt := range Events() {
		logWriter(LevelInfo, component, evt.Type.String()+
			" irq="+Itoa(int(evt.IRQ))+
			" clock="+Utoa(evt.Clock)+
			" v="+Hex(evt.Value))
	}
	logWriter(LevelInfo, component, "=== End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
}
