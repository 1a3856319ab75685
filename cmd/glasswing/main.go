// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// glasswing fingerprints TLS ClientHellos from live traffic or pcap
// files and optionally identifies the sending process against a
// fingerprint database.
package main

import (
	"flag"
	"fmt"
	"os"

	"grimm.is/glasswing/internal/analytics"
	"grimm.is/glasswing/internal/capture"
	"grimm.is/glasswing/internal/classify"
	"grimm.is/glasswing/internal/config"
	"grimm.is/glasswing/internal/fpdb"
	"grimm.is/glasswing/internal/identify"
	"grimm.is/glasswing/internal/logging"
	"grimm.is/glasswing/internal/metrics"
	"grimm.is/glasswing/internal/protocol"
)

func main() {
	var (
		readFile      = flag.String("read", "", "read packets from a pcap file")
		captureIface  = flag.String("capture", "", "capture packets from a network interface")
		fpDBPath      = flag.String("fp-db", "", "fingerprint database (gzip newline-JSON)")
		outputPath    = flag.String("output", "", "write flow records to a file instead of stdout")
		analyze       = flag.Bool("analyze", false, "attach process identification to each record")
		numProcs      = flag.Int("num-procs", 0, "include the top N probable processes in analysis")
		humanReadable = flag.Bool("human-readable", false, "attach decoded fingerprint fields")
		lookup        = flag.String("lookup", "", "print the raw database record for a fingerprint string and exit")
		configPath    = flag.String("config", "", "path to HCL config file")
	)
	flag.Parse()

	if err := run(*readFile, *captureIface, *fpDBPath, *outputPath, *lookup, *configPath, *analyze, *numProcs, *humanReadable); err != nil {
		fmt.Fprintf(os.Stderr, "glasswing: %v\n", err)
		os.Exit(1)
	}
}

func run(readFile, captureIface, fpDBPath, outputPath, lookup, configPath string, analyze bool, numProcs int, humanReadable bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags override file values.
	if fpDBPath == "" {
		fpDBPath = cfg.Database.Path
	}
	if captureIface == "" {
		captureIface = cfg.Capture.Interface
	}
	if analyze || cfg.Analysis.Enabled {
		analyze = true
	}
	if numProcs == 0 {
		numProcs = cfg.Analysis.NumProcs
	}

	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	var db *fpdb.Database
	if fpDBPath != "" {
		loaded, err := fpdb.Load(fpDBPath, logger)
		if err != nil {
			return err
		}
		db = loaded
		logger.Info("fingerprint database loaded", "path", fpDBPath, "records", db.Size())
	} else {
		db = fpdb.NewEmpty(logger)
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	writer := capture.NewRecordWriter(out)

	if lookup != "" {
		record, found := db.Lookup(lookup)
		if !found {
			return fmt.Errorf("fingerprint not found: %s", lookup)
		}
		return writer.WriteValue(record)
	}

	var engine *identify.Engine
	if analyze {
		classifiers := classify.New(cfg.Classifiers.ASNDatabase, logger)
		families, err := identify.LoadAppFamilies(cfg.Analysis.AppFamilies, logger)
		if err != nil {
			return err
		}
		engine = identify.NewEngine(db, classifiers, families, cfg.Analysis.MemoCapacity, logger)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(
			func() float64 { return float64(db.Size()) },
			func() float64 {
				if engine == nil {
					return 0
				}
				hits, _ := engine.MemoStats()
				return float64(hits)
			},
			func() float64 {
				if engine == nil {
					return 0
				}
				_, misses := engine.MemoStats()
				return float64(misses)
			},
		)
		m.Serve(cfg.Metrics.Listen, logger)
	}

	var store *analytics.Store
	if cfg.Analytics.Enabled {
		s, err := analytics.Open(cfg.Analytics.Path)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	parsers := []protocol.Parser{protocol.NewTLSParser(db, m, logger)}
	pipeline := capture.NewPipeline(parsers, engine, writer, store, m, capture.Options{
		Analyze:       analyze,
		NumProcs:      numProcs,
		HumanReadable: humanReadable,
	}, logger)

	switch {
	case readFile != "":
		handle, err := capture.OpenFile(readFile, cfg.Capture.BPF)
		if err != nil {
			return err
		}
		defer handle.Close()
		logger.Info("reading pcap", "file", readFile)
		return pipeline.Run(handle)
	case captureIface != "":
		handle, err := capture.OpenLive(captureIface, cfg.Capture.BPF, int32(cfg.Capture.SnapLen), cfg.Capture.Promisc)
		if err != nil {
			return err
		}
		defer handle.Close()
		logger.Info("capturing", "interface", captureIface)
		return pipeline.Run(handle)
	default:
		flag.Usage()
		return fmt.Errorf("one of -read, -capture or -lookup is required")
	}
}
