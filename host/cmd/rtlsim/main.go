// rtlsim boots the board code against the RTL819x hardware model
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-tty"
	"github.com/sirupsen/logrus"

	"rtl819x/board"
	"rtl819x/core"
	"rtl819x/host/logsink"
	"rtl819x/host/monitor"
	"rtl819x/host/serial"
	"rtl819x/irq"
	"rtl819x/protocol"
	"rtl819x/sim"
	"rtl819x/soc"
	"rtl819x/timer"
)

var (
	configPath  = flag.String("config", "", "Board description (JSON), default is a stock RTL8196E")
	overrides   = flag.String("set", "", "Property overrides, e.g. \"timer.shift=4 board.tick-rate=1000\"")
	ticks       = flag.Uint64("ticks", 1000, "Periodic ticks to run in batch mode")
	interactive = flag.Bool("interactive", false, "Run in real time and drive device lines from the keyboard")
	serialPath  = flag.String("serial", "", "Send telemetry frames to this serial device instead of printing them")
	events      = flag.Bool("events", true, "Record interrupt and timer events for the ring dump")
	verbose     = flag.Bool("v", false, "Enable debug logging")
)

// Device lines the keyboard can raise in interactive mode
const demoLines = 8

var log = logrus.New()

func loadConfig() (board.Config, error) {
	cfg := board.DefaultConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, err
		}
		if cfg, err = board.LoadConfig(data); err != nil {
			return nil, fmt.Errorf("%s: %w", *configPath, err)
		}
	}
	o, err := board.ParseOverrides(*overrides)
	if err != nil {
		return nil, err
	}
	cfg.Apply(o)
	return cfg, nil
}

// reporter returns the telemetry sink: the serial link if one was given,
// otherwise a local decoder printing each message
func reporter() (func([]byte), func(), error) {
	if *serialPath != "" {
		port, err := serial.Open(serial.DefaultConfig(*serialPath))
		if err != nil {
			return nil, nil, err
		}
		send := func(frame []byte) {
			if _, err := port.Write(frame); err != nil {
				log.WithError(err).Warn("telemetry write failed")
			}
		}
		return send, func() { port.Close() }, nil
	}

	dec := protocol.NewDecoder(func(_ uint8, payload []byte) {
		msg, err := protocol.DecodeMessage(payload)
		if err != nil {
			log.WithError(err).Warn("bad telemetry")
			return
		}
		fmt.Println(monitor.Format(msg))
	})
	return func(frame []byte) { dec.Receive(protocol.NewSliceInputBuffer(frame)) }, func() {}, nil
}

type session struct {
	m     *sim.Machine
	b     *board.Board
	reset bool
}

func boot(cfg board.Config, report func([]byte)) (*session, error) {
	core.ClearEventRing()
	s := &session{m: sim.New(sim.Config{SoCID: soc.IDRTL8196E | 1, DCR: 0x14880000})}
	b, err := board.Setup(cfg, board.Platform{
		Bus:    s.m.Mem,
		CP0:    s.m.CP0,
		Report: report,
		Hang: func() {
			before := s.m.Resets()
			s.m.RunUntil(^uint64(0), func() bool { return s.m.Resets() > before })
			s.reset = true
		},
	})
	if err != nil {
		return nil, err
	}
	s.m.Attach(b.CPU)
	s.b = b
	return s, nil
}

// addDemoDevices puts a consumer on INTC lines 0..7 that drops its line
// once serviced, unless the line already belongs to the board
func (s *session) addDemoDevices() {
	for hw := uint(0); hw < demoLines; hw++ {
		virq, err := s.b.INTC.Domain().CreateMapping(hw)
		if err != nil {
			continue
		}
		if d, ok := s.b.Table.Desc(virq); ok && d.Name() != "" {
			continue
		}
		line := hw
		s.b.Table.Request(virq, func(n uint, _ interface{}) irq.Result {
			log.WithField("irq", n).Infof("device on line %d serviced", line)
			s.m.Assert(line, false)
			return irq.Handled
		}, fmt.Sprintf("demo%d", hw), nil)
	}
}

func (s *session) reload() uint64 {
	return uint64(s.b.Timer.Device().PeriodicReload())
}

func runBatch(s *session) {
	s.m.Run(*ticks * s.reload())
	snap := s.b.Snapshot()
	fmt.Println(monitor.Format(&snap))
	log.WithField("ticks", s.b.Ticks()).Infof("simulated %d us", core.TimerToUS(core.GetTime()))
	if n := s.m.Storms(); n > 0 {
		log.Warnf("%d interrupt storms", n)
	}
	core.DumpEventRing()
}

// runInteractive paces the machine at its tick rate and reads keys: 0-7
// raise a device line, s prints statistics, e dumps the event ring, r
// restarts, q quits. Returns
// true if the machine was restarted.
func runInteractive(s *session, t *tty.TTY, keys <-chan rune, period time.Duration) bool {
	s.addDemoDevices()
	fmt.Fprintln(t.Output(), "keys: 0-7 raise line, s stats, e events, r restart, q quit")

	tick := time.NewTicker(period)
	defer tick.Stop()
	for {
		select {
		case r, ok := <-keys:
			if !ok {
				return false
			}
			switch {
			case r >= '0' && r < '0'+demoLines:
				s.m.Assert(uint(r-'0'), true)
			case r == 's':
				snap := s.b.Snapshot()
				fmt.Fprintln(t.Output(), monitor.Format(&snap))
			case r == 'e':
				core.DumpEventRing()
			case r == 'r':
				if !s.b.Restart() {
					fmt.Fprintln(t.Output(), "restart hook disabled")
					continue
				}
				return s.reset
			case r == 'q', r == 3: // Ctrl-C in raw mode
				return false
			}
		case <-tick.C:
			s.m.Run(s.reload())
		}
	}
}

func main() {
	flag.Parse()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	logsink.Install(log)
	core.SetEventsEnabled(*events)

	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Fatal("bad board description")
	}
	report, closeReport, err := reporter()
	if err != nil {
		log.WithError(err).Fatal("cannot open telemetry link")
	}
	defer closeReport()

	if !*interactive {
		s, err := boot(cfg, report)
		if err != nil {
			log.WithError(err).Fatal("setup failed")
		}
		runBatch(s)
		return
	}

	t, err := tty.Open()
	if err != nil {
		log.WithError(err).Fatal("cannot open terminal")
	}
	defer t.Close()
	restore := t.MustRaw()
	defer restore()

	keys := make(chan rune)
	go func() {
		defer close(keys)
		for {
			r, err := t.ReadRune()
			if err != nil {
				return
			}
			keys <- r
		}
	}()

	rate, _ := cfg.U32(board.NodeBoard, "tick-rate")
	if rate == 0 {
		rate = timer.DefaultHz
	}
	period := time.Second / time.Duration(rate)
	for {
		s, err := boot(cfg, report)
		if err != nil {
			log.WithError(err).Error("setup failed")
			return
		}
		if !runInteractive(s, t, keys, period) {
			return
		}
		log.Info("machine reset, booting again")
	}
}
