package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rating-ledger/internal/notifier"
	"github.com/mauv0809/rating-ledger/internal/pubsub"
	"github.com/mauv0809/rating-ledger/internal/report"
)

// pushEnvelope is the body of a Pub/Sub push request.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data      string `json:"data"` // base64-encoded MessagePack payload
		MessageID string `json:"messageId"`
	} `json:"message"`
}

// MatchCompletedHandler receives match-completed events and posts the result
// notification. A non-2xx answer makes Pub/Sub redeliver the event.
func MatchCompletedHandler(reports report.Reports, n notifier.Notifier, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received match completed message", "body", string(bodyBytes))

		var pubsubMsg pushEnvelope
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var event pubsub.LedgerEvent
		if err := pubsubClient.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid event payload", http.StatusBadRequest)
			return
		}
		if event.Type != pubsub.EventMatchCompleted {
			log.Info("Ignoring event", "type", event.Type, "eventID", event.ID)
			w.Write([]byte("IGNORED"))
			return
		}

		host, err := reports.PlayerSummary(r.Context(), event.HostID)
		if err != nil {
			writeError(w, "Failed to look up host", err)
			return
		}
		guest, err := reports.PlayerSummary(r.Context(), event.GuestID)
		if err != nil {
			writeError(w, "Failed to look up guest", err)
			return
		}

		result := notifier.MatchResult{
			MatchID:         event.MatchID,
			HostID:          host.ID,
			HostName:        host.Name,
			GuestID:         guest.ID,
			GuestName:       guest.Name,
			Start:           event.Start,
			End:             event.End,
			HostWon:         event.HostWon,
			PostRatingHost:  event.PostRatingHost,
			PostRatingGuest: event.PostRatingGuest,
		}
		if n == nil {
			log.Info("Notifications disabled, skipping result", "matchID", event.MatchID)
			w.Write([]byte("OK"))
			return
		}
		if err := n.SendResultNotification(r.Context(), result, IsDryRunFromContext(r)); err != nil {
			log.Error("Failed to notify result", "error", err, "matchID", event.MatchID)
			http.Error(w, "Failed to notify result", http.StatusInternalServerError)
			return
		}
		log.Info("Sent result notification", "matchID", event.MatchID, "eventID", event.ID)
		w.Write([]byte("OK"))
	}
}
