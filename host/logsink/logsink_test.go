package logsink

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"rtl819x/core"
)

func TestWriterForwardsLevelAndComponent(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	Install(logger)
	defer core.SetLogWriter(nil)
	defer core.SetLogLevel(core.LevelInfo)

	core.Warn("intc", "masked line 4")
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("No entry logged")
	}
	if entry.Level != logrus.WarnLevel || entry.Message != "masked line 4" {
		t.Errorf("Entry %v %q", entry.Level, entry.Message)
	}
	if entry.Data["component"] != "intc" {
		t.Errorf("component = %v", entry.Data["component"])
	}

	core.Debug("timer", "next event")
	if hook.LastEntry().Level != logrus.DebugLevel {
		t.Errorf("Debug logged at %v", hook.LastEntry().Level)
	}
	if len(hook.AllEntries()) != 2 {
		t.Errorf("Logged %d entries, want 2", len(hook.AllEntries()))
	}
}

func TestInstallFollowsLoggerLevel(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.WarnLevel)
	Install(logger)
	defer core.SetLogWriter(nil)
	defer core.SetLogLevel(core.LevelInfo)

	core.Info("lopi", "LOPI started")
	if len(hook.AllEntries()) != 0 {
		t.Error("Info passed a warn level logger")
	}
	if core.GetLogLevel() != core.LevelWarn {
		t.Errorf("core level %v", core.GetLogLevel())
	}
}

func TestLevelMapping(t *testing.T) {
	for _, l := range []core.Level{core.LevelError, core.LevelWarn, core.LevelInfo, core.LevelDebug} {
		if got := CoreLevel(Level(l)); got != l {
			t.Errorf("%v maps back to %v", l, got)
		}
	}
	if CoreLevel(logrus.PanicLevel) != core.LevelError || CoreLevel(logrus.TraceLevel) != core.LevelDebug {
		t.Error("Out of range logrus levels not clamped")
	}
}
