// Command dabmon is the reference consumer of pkg/dab: it dials a TCP
// EDI source, feeds bytes into the decoder core, logs every event, and
// serves the collected counters over a Prometheus endpoint. None of
// this file's code is reachable from the core itself — it exists to
// give the ambient stack (config, logging, metrics) a concrete home.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/openedi/dabcore/pkg/audio"
	"github.com/openedi/dabcore/pkg/clock"
	"github.com/openedi/dabcore/pkg/config"
	"github.com/openedi/dabcore/pkg/dab"
	"github.com/openedi/dabcore/pkg/events"
	"github.com/openedi/dabcore/pkg/fic"
	"github.com/openedi/dabcore/pkg/logger"
	"github.com/openedi/dabcore/pkg/metrics"
	"github.com/openedi/dabcore/pkg/pad"
)

var (
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("dabmon %s (%s)\n", version, gitCommit)
		os.Exit(0)
	}

	log := logger.New(logger.Config{Level: "info", Format: "text"})
	log.Info("starting dabmon", logger.String("version", version))

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	log = logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	collector := metrics.NewCollector()

	decoder := dab.NewDecoder(buildSink(log.WithComponent("decoder")), clock.Real(), log.WithComponent("decoder"), collector)

	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runMetricsServer(ctx, cfg.Metrics.Prometheus, collector, log.WithComponent("metrics"))
		}()
		log.Info("metrics server started",
			logger.Int("port", cfg.Metrics.Prometheus.Port),
			logger.String("path", cfg.Metrics.Prometheus.Path))
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		runSourceLoop(ctx, cfg.Source, decoder, log.WithComponent("source"))
	}()

	sig := <-sigChan
	log.Info("received shutdown signal", logger.String("signal", sig.String()))
	cancel()
	wg.Wait()
	log.Info("dabmon stopped")
}

// buildSink wires every decoder event to a log line. cmd/dabmon is the
// only place in the repository that needs a live events.Sink; nothing
// downstream of the core subscribes to anything else.
func buildSink(log *logger.Logger) events.Sink {
	return events.Sink{
		OnEnsembleUpdated: func(e fic.Ensemble) {
			log.Info("ensemble updated",
				logger.Uint64("eid", uint64(e.EID)),
				logger.String("label", e.Label),
				logger.Int("services", len(e.Services())))
		},
		OnAacSegment: func(seg audio.AacSegment) {
			log.Debug("aac segment",
				logger.Uint("scid", uint(seg.SCId)),
				logger.String("codec", seg.Format.Codec),
				logger.Uint("bitrate_kbps", uint(seg.Format.BitrateKbps)))
		},
		OnDlObject: func(dl pad.DL) {
			log.Info("dynamic label",
				logger.Uint("scid", uint(dl.SCId)),
				logger.String("label", dl.Label))
		},
		OnMotImage: func(sls pad.SLS) {
			log.Info("slideshow image",
				logger.Uint("scid", uint(sls.SCId)),
				logger.String("mimetype", sls.Mimetype),
				logger.String("size", humanize.Bytes(uint64(sls.Len))))
		},
		OnUnknownFrame: func(f events.UnknownFrame) {
			log.Warn("unknown AF protocol tag", logger.String("tag", f.ProtocolTag))
		},
		OnResyncLoss: func(r events.ResyncLoss) {
			log.Warn("intake buffer resynced", logger.Int("discarded_bytes", r.DiscardedBytes))
		},
		OnInternalError: func(e events.InternalError) {
			log.Error("decoder internal error", logger.String("message", e.Message))
		},
	}
}

func runMetricsServer(ctx context.Context, cfg config.PrometheusConfig, collector *metrics.Collector, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.NewHandler(collector))

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("metrics server error", logger.Error(err))
	}
}

// runSourceLoop dials cfg.Address, feeds everything it reads to the
// decoder, and reconnects (resetting the decoder's session state) on
// any read error, until ctx is cancelled.
func runSourceLoop(ctx context.Context, cfg config.SourceConfig, decoder *dab.Decoder, log *logger.Logger) {
	bufSize := cfg.ReadBufBytes
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	buf := make([]byte, bufSize)

	var totalBytes uint64
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := net.Dial("tcp", cfg.Address)
		if err != nil {
			log.Error("failed to connect to EDI source", logger.String("address", cfg.Address), logger.Error(err))
			if !sleepOrDone(ctx, reconnectDelay(cfg)) {
				return
			}
			continue
		}
		log.Info("connected to EDI source", logger.String("address", cfg.Address))
		decoder.Reset()

		for {
			if ctx.Err() != nil {
				_ = conn.Close()
				return
			}
			n, err := conn.Read(buf)
			if n > 0 {
				totalBytes += uint64(n)
				decoder.Feed(buf[:n])
			}
			if err != nil {
				log.Warn("EDI source connection lost",
					logger.Error(err),
					logger.String("total_received", humanize.Bytes(totalBytes)))
				break
			}
		}
		_ = conn.Close()

		if !sleepOrDone(ctx, reconnectDelay(cfg)) {
			return
		}
	}
}

func reconnectDelay(cfg config.SourceConfig) time.Duration {
	secs := cfg.ReconnectSecs
	if secs <= 0 {
		secs = 5
	}
	return time.Duration(secs) * time.Second
}

// sleepOrDone waits for d or ctx cancellation, whichever comes first,
// reporting whether the wait completed normally (false means ctx ended).
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
