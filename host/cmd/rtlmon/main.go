// rtlmon prints the telemetry an RTL819x board sends over its serial link
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"rtl819x/host/logsink"
	"rtl819x/host/monitor"
	"rtl819x/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyUSB0", "Serial device path")
	baud    = flag.Int("baud", serial.DefaultBaud, "Baud rate")
	verbose = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	logsink.Install(logger)

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	port, err := serial.Open(cfg)
	if err != nil {
		logger.WithError(err).Fatal("cannot open link")
	}
	if err := port.Flush(); err != nil {
		logger.WithError(err).Warn("flush failed")
	}

	m := monitor.New(port, logger.WithField("device", *device))
	logger.Infof("listening on %s at %d baud", *device, *baud)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	for {
		select {
		case msg, ok := <-m.Messages():
			if !ok {
				logger.Info("link closed")
				return
			}
			fmt.Println(monitor.Format(msg))
		case <-interrupt:
			m.Close()
			if n := m.Errors(); n > 0 {
				logger.Warnf("%d corrupt frames", n)
			}
			return
		}
	}
}
