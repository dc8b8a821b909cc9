// Package metrics serves the prometheus registry and the operation status.
package metrics

import (
	"context"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout  = time.Second * 15
	MetricsNamespace = "otactl"
)

// ServeMetrics serves /metrics and /status on l until ctx is done.
func ServeMetrics(ctx context.Context, l net.Listener, gatherer prometheus.Gatherer, status *StatusTracker, log *zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	if status != nil {
		mux.Handle("/status", status)
	}
	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(l)
	}()
	log.Info().Str("addr", l.Addr().String()).Msg("Starting metrics server")

	select {
	case err := <-serveErr:
		log.Err(err).Msg("Metrics server quit with error")
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	if err := <-serveErr; err != http.ErrServerClosed {
		log.Err(err).Msg("Metrics server quit with error")
		return err
	}
	log.Info().Msg("Metrics server stopped")
	return nil
}

func RegisterBuildInfo(reg prometheus.Registerer, buildType, buildTime, version string) {
	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: MetricsNamespace,
			Name:      "build_info",
			Help:      "Build and version information",
		},
		[]string{"goversion", "type", "revision", "version"},
	)
	reg.MustRegister(buildInfo)
	buildInfo.WithLabelValues(runtime.Version(), buildType, buildTime, version).Set(1)
}
