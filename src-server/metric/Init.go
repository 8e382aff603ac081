package metric

import (
	"context"
	"log/slog"
	"time"

	"showdownbot/src-server/model"
	"showdownbot/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// sampleGauge registers a gauge and sets it from sample every interval until
// the app shuts down. A failed sample leaves the previous value.
func sampleGauge(as *utils.AppState, opts prometheus.GaugeOpts, interval time.Duration, sample func() (time.Duration, error)) {
	gauge := prometheus.NewGauge(opts)
	good := true
	if err := prometheus.Register(gauge); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register "+opts.Name+" metric", "error", err)
			good = false
		}
	}
	if good {
		slog.Debug(opts.Name + " metric registered")
		gauge.Set(0)
	}
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				switch prometheus.Unregister(gauge) {
				case true:
					slog.Debug(opts.Name + " metric unregistered")
				case false:
					slog.Warn(opts.Name + " metric not registered")
				}
				return
			case <-ticker.C:
				latency, err := sample()
				if err != nil {
					slog.Error("can't sample "+opts.Name, "error", err)
					continue
				}
				gauge.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

func databaseEmptyRead(as *utils.AppState) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	if _, err := as.BunDB.NewSelect().
		Model((*model.Profile)(nil)).
		Where("id = ?", "").
		Exists(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func Init(as *utils.AppState) {
	interval := as.Config.GetMetricCollectionInterval()

	sampleGauge(as, prometheus.GaugeOpts{
		Name: "showdown_database_empty_read_microsec",
		Help: "The latency of an empty database read in microseconds",
	}, interval, func() (time.Duration, error) {
		return databaseEmptyRead(as)
	})
	sampleGauge(as, prometheus.GaugeOpts{
		Name: "showdown_discord_heartbeat_latency_microsec",
		Help: "The latency of a discord heartbeat in microseconds",
	}, interval, func() (time.Duration, error) {
		return as.DgSession.HeartbeatLatency(), nil
	})
}
