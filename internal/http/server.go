package http

import (
	"net/http"

	"github.com/mauv0809/rating-ledger/internal/http/handlers"
	"github.com/mauv0809/rating-ledger/internal/metrics"
	"github.com/mauv0809/rating-ledger/internal/notifier"
	"github.com/mauv0809/rating-ledger/internal/pubsub"
	"github.com/mauv0809/rating-ledger/internal/report"
)

// NewServer wires the read API and the event push endpoint. A nil notifier
// acknowledges match events without notifying.
func NewServer(db handlers.Pinger, reports report.Reports, counters metrics.MetricsStore, metricsHandler http.Handler, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		DB:             db,
		Reports:        reports,
		Counters:       counters,
		MetricsHandler: metricsHandler,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(handlers.HealthCheckHandler(s.DB), paramsMiddleware))
	s.Router.Handle("GET /stats", Chain(handlers.StatsHandler(s.Counters), paramsMiddleware))
	s.Router.Handle("GET /players/{id}", Chain(handlers.PlayerHandler(s.Reports), paramsMiddleware))
	s.Router.Handle("GET /players/{id}/history", Chain(handlers.HistoryHandler(s.Reports), paramsMiddleware))
	s.Router.Handle("GET /reports/range", Chain(handlers.RangeHandler(s.Reports), paramsMiddleware))
	s.Router.Handle("GET /reports/ranking", Chain(handlers.RankingHandler(s.Reports), paramsMiddleware))
	s.Router.Handle("POST /events/match-completed", Chain(handlers.MatchCompletedHandler(s.Reports, s.Notifier, s.pubsub), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
