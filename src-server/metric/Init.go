package metric

import (
	"errors"
	"log/slog"
	"time"
	"vobject/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Parsed documents, labelled by outcome: ok or the error kind
	ParseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vobject_parse_total",
		Help: "The number of parsed documents by result",
	}, []string{"result"})

	// Serialized components
	SerializeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vobject_serialize_total",
		Help: "The number of serialized components",
	})
)

// Register a gauge with the default registry, reusing the one already
// registered under the same name.
func registerGauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	gauge := prometheus.NewGauge(opts)
	if err := prometheus.Register(gauge); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if !errors.As(err, &alreadyRegistered) {
			slog.Error("can't register metric", "name", opts.Name, "error", err)
			return gauge
		}
		if existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge); ok {
			gauge = existing
		}
	}
	slog.Debug("metric registered", "name", opts.Name)
	gauge.Set(0)
	return gauge
}

// Poll `sample` every tick until shutdown
func pollGauge(as *utils.AppState, gauge prometheus.Gauge, name string, tickerInterval time.Duration, sample func() (float64, error)) {
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				switch prometheus.Unregister(gauge) {
				case true:
					slog.Debug("metric unregistered", "name", name)
				case false:
					slog.Warn("metric not registered", "name", name)
				}
				return
			case <-ticker.C:
				value, err := sample()
				if err != nil {
					slog.Error("can't sample metric", "name", name, "error", err)
					continue
				}
				gauge.Set(value)
			}
		}
	}()
}

// Show the latest sample of `ch`, reset to 0 when no sample arrives for a
// while
func latencyGauge(as *utils.AppState, gauge prometheus.Gauge, name string, ch chan float64, clearTickerInterval time.Duration) {
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		clearTicker := time.NewTicker(clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				switch prometheus.Unregister(gauge) {
				case true:
					slog.Debug("metric unregistered", "name", name)
				case false:
					slog.Warn("metric not registered", "name", name)
				}
				return
			case latency := <-ch:
				gauge.Set(latency)
				clearTicker.Reset(clearTickerInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := as.Config.GetMetricCollectionInterval() * 2

	pollGauge(as, registerGauge(prometheus.GaugeOpts{
		Name: "vobject_database_empty_read_microsec",
		Help: "The latency of an empty database read in microseconds",
	}), "vobject_database_empty_read_microsec", tickerInterval, func() (float64, error) {
		latency, err := database(as)
		return float64(latency.Microseconds()), err
	})

	pollGauge(as, registerGauge(prometheus.GaugeOpts{
		Name: "vobject_documents_stored",
		Help: "The number of documents in the database",
	}), "vobject_documents_stored", tickerInterval, func() (float64, error) {
		count, err := documentCount(as)
		return float64(count), err
	})

	for _, gauge := range []struct {
		name string
		help string
		ch   chan float64
	}{
		{"vobject_database_read_microsec", "The latency of a database read in microseconds", as.MetricChans.DatabaseRead},
		{"vobject_database_write_microsec", "The latency of a database write in microseconds", as.MetricChans.DatabaseWrite},
		{"vobject_parse_microsec", "The latency of parsing a document in microseconds", as.MetricChans.Parse},
		{"vobject_serialize_microsec", "The latency of serializing a component in microseconds", as.MetricChans.Serialize},
	} {
		latencyGauge(as, registerGauge(prometheus.GaugeOpts{
			Name: gauge.name,
			Help: gauge.help,
		}), gauge.name, gauge.ch, clearTickerInterval)
	}
}
