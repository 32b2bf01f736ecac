package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gourdian25/gourdianringlog"
	"github.com/gourdian25/gourdianringlog/filesink"
	"github.com/gourdian25/gourdianringlog/slogbridge"
)

func main() {
	flash, err := filesink.Open(filesink.Config{Dir: "logs", Name: "flash", MaxBytes: 64 * 1024, Compress: true})
	if err != nil {
		log.Fatalf("Failed to open flash log: %v", err)
	}
	defer flash.Close()

	config := gourdianringlog.DefaultConfig()
	config.SubsystemLevels = map[string]string{"ADC": "INFO"}

	logger, err := gourdianringlog.New(config,
		gourdianringlog.WithClock(gourdianringlog.SystemClock()),
		gourdianringlog.WithDisplay(gourdianringlog.WriterSink(os.Stdout)),
		gourdianringlog.WithPersistence(flash),
	)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	// Code written against slog shares the same ring.
	adc := slog.New(slogbridge.NewHandler(logger, gourdianringlog.ADC, slogbridge.Options{}))
	adc.Debug("raw sample", "value", 512)           // below the ADC threshold
	adc.Info("calibrated", "offset", -3)            // displayed
	adc.Error("reference out of range", "mv", 3412) // displayed and persisted

	logger.Record(gourdianringlog.CORE, gourdianringlog.CRITICAL, "brown-out detected", true)
	logger.Flush()
}
