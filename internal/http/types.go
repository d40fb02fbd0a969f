package http

import (
	"net/http"

	"github.com/mauv0809/rating-ledger/internal/http/handlers"
	"github.com/mauv0809/rating-ledger/internal/metrics"
	"github.com/mauv0809/rating-ledger/internal/notifier"
	"github.com/mauv0809/rating-ledger/internal/pubsub"
	"github.com/mauv0809/rating-ledger/internal/report"
)

type Server struct {
	DB             handlers.Pinger
	Reports        report.Reports
	Counters       metrics.MetricsStore
	MetricsHandler http.Handler
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
