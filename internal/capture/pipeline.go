// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package capture reads packets from pcap sources, fans TCP payloads
// out to the registered protocol parsers, and emits one JSON record
// per fingerprinted flow.
package capture

import (
	"time"

	"github.com/dreadl0ck/ja3"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"grimm.is/glasswing/internal/analytics"
	"grimm.is/glasswing/internal/identify"
	"grimm.is/glasswing/internal/logging"
	"grimm.is/glasswing/internal/metrics"
	"grimm.is/glasswing/internal/protocol"
	"grimm.is/glasswing/internal/tlsfp"
)

// ja3 of an empty input; DigestHexPacket returns it for packets that
// carry no ClientHello.
const emptyJA3 = "d41d8cd98f00b204e9800998ecf8427e"

// flushed to analytics once this many observations accumulate
const analyticsBatchSize = 64

// Options control per-flow enrichment.
type Options struct {
	// Analyze attaches process identification to each record.
	Analyze bool
	// NumProcs caps the probable-process list; 0 omits the list.
	NumProcs int
	// HumanReadable attaches the decoded fingerprint fields.
	HumanReadable bool
}

// Pipeline drives the packet loop.
type Pipeline struct {
	parsers []protocol.Parser
	engine  *identify.Engine
	writer  *RecordWriter
	store   *analytics.Store
	metrics *metrics.Metrics
	logger  *logging.Logger
	opts    Options

	pending []analytics.Observation
}

// NewPipeline assembles a pipeline. engine, store and metrics may each
// be nil, disabling analysis, persistence and counters respectively.
func NewPipeline(parsers []protocol.Parser, engine *identify.Engine, writer *RecordWriter, store *analytics.Store, m *metrics.Metrics, opts Options, logger *logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	return &Pipeline{
		parsers: parsers,
		engine:  engine,
		writer:  writer,
		store:   store,
		metrics: m,
		logger:  logger,
		opts:    opts,
	}
}

// Run consumes packets from the handle until it is exhausted (offline)
// or closed (live), then flushes pending analytics.
func (p *Pipeline) Run(handle *pcap.Handle) error {
	defer p.Flush()

	source := gopacket.NewPacketSource(handle, handle.LinkType())
	count := 0
	start := time.Now()
	for packet := range source.Packets() {
		p.ProcessPacket(packet)
		count++
	}
	p.logger.Info("capture finished", "packets", count, "elapsed", time.Since(start))
	return nil
}

// ProcessPacket inspects one packet. Packets that are not TCP, carry
// no payload, or whose payload no parser claims are skipped silently.
func (p *Pipeline) ProcessPacket(packet gopacket.Packet) {
	if p.metrics != nil {
		p.metrics.PacketsSeen.Inc()
	}

	var srcIP, dstIP string
	var proto uint8
	switch ip := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		srcIP, dstIP = ip.SrcIP.String(), ip.DstIP.String()
		proto = uint8(ip.Protocol)
	case *layers.IPv6:
		srcIP, dstIP = ip.SrcIP.String(), ip.DstIP.String()
		proto = uint8(ip.NextHeader)
	default:
		return
	}

	tcpLayer := packet.Layer(layers.LayerTypeTCP)
	if tcpLayer == nil {
		return
	}
	tcp := tcpLayer.(*layers.TCP)
	if len(tcp.Payload) == 0 {
		return
	}

	ts := time.Now()
	if md := packet.Metadata(); md != nil && !md.Timestamp.IsZero() {
		ts = md.Timestamp
	}

	for _, parser := range p.parsers {
		result, ok := parser.Fingerprint(tcp.Payload)
		if !ok {
			continue
		}
		rec := &FlowRecord{
			SrcIP:      srcIP,
			DstIP:      dstIP,
			SrcPort:    uint16(tcp.SrcPort),
			DstPort:    uint16(tcp.DstPort),
			Protocol:   proto,
			EventStart: formatEventStart(ts),
			Context:    result.Context,
		}

		switch parser.Proto() {
		case "tls":
			rec.Fingerprints.TLS = result.Fingerprint
			rec.Fingerprints.TLSApprox = result.Approx
			if digest := ja3.DigestHexPacket(packet); digest != "" && digest != emptyJA3 {
				rec.Fingerprints.JA3 = digest
			}
			if p.opts.HumanReadable {
				if readable, ok := tlsfp.HumanReadable([]byte(result.Fingerprint)); ok {
					rec.TLS = &readable
				}
			}
		}

		serverName := ""
		if result.Context != nil {
			serverName = result.Context.ServerName
		}

		if p.opts.Analyze && p.engine != nil {
			fpStr := result.Fingerprint
			if result.Approx != "" {
				fpStr = result.Approx
			}
			rec.Analysis = p.engine.Identify(fpStr, serverName, dstIP, uint16(tcp.DstPort), p.opts.NumProcs)
		}

		if p.metrics != nil {
			p.metrics.FlowsFingerprinted.Inc()
		}
		if err := p.writer.Write(rec); err != nil {
			p.logger.Error("writing flow record", "error", err)
		}
		p.observe(rec, result, ts, serverName)
	}
}

func (p *Pipeline) observe(rec *FlowRecord, result *protocol.Result, ts time.Time, serverName string) {
	if p.store == nil {
		return
	}
	obs := analytics.Observation{
		Timestamp:   ts,
		SrcIP:       rec.SrcIP,
		DstIP:       rec.DstIP,
		SrcPort:     int(rec.SrcPort),
		DstPort:     int(rec.DstPort),
		ServerName:  serverName,
		Fingerprint: result.Fingerprint,
		Approx:      result.Approx,
	}
	if rec.Analysis != nil {
		obs.Process = rec.Analysis.Process
		obs.Score = rec.Analysis.Score
	}
	p.pending = append(p.pending, obs)
	if len(p.pending) >= analyticsBatchSize {
		p.Flush()
	}
}

// Flush persists pending observations. Safe to call with none pending.
func (p *Pipeline) Flush() {
	if p.store == nil || len(p.pending) == 0 {
		return
	}
	if err := p.store.RecordObservations(p.pending); err != nil {
		p.logger.Warn("recording observations", "error", err, "count", len(p.pending))
	}
	p.pending = p.pending[:0]
}
