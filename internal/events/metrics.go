package events

import "github.com/prometheus/client_golang/prometheus"

var (
	publishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commande_events_published_total",
		Help: "Commande events successfully published, by type",
	}, []string{"evenement"})
	publishErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "commande_events_publish_errors_total",
		Help: "Commande event publish attempts that failed",
	})
)

func init() {
	prometheus.MustRegister(publishedTotal, publishErrorsTotal)
}
