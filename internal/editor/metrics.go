package editor

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

var intentsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "editor",
	Name:      "intents_total",
	Help:      "Total count of processed edit intents",
}, []string{"type"})

var openDocumentsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "editor",
	Name:      "open_documents",
	Help:      "Current count of open documents",
})

func registerMetrics() {
	for _, collector := range []prometheus.Collector{intentsCounter, openDocumentsGauge} {
		if err := prometheus.Register(collector); err != nil {
			slog.Error("Register metric", "err", err)
		}
	}
}
