package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Eventos do outbox entregues e marcados como PUBLISHED",
	})
	eventsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_failed_total",
		Help: "Falhas de entrega que ainda serão retentadas",
	})
	eventsAbandoned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_abandoned_total",
		Help: "Eventos marcados FAILED após esgotar as tentativas",
	})
)
