package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rating-ledger/internal/metrics"
	"github.com/mauv0809/rating-ledger/internal/report"
)

func PlayerHandler(reports report.Reports) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := reports.PlayerSummary(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, "Failed to get player", err)
			return
		}
		if wantsText(r) {
			writeLines(w, []string{report.PlayerLine(*player)})
			return
		}
		writeJSON(w, player)
	}
}

func HistoryHandler(reports report.Reports) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := reports.History(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, "Failed to get match history", err)
			return
		}
		if wantsText(r) {
			writeLines(w, report.HistoryLines(history))
			return
		}
		writeJSON(w, history)
	}
}

// RangeHandler serves completed matches between the from and to days (YYYYMMDD).
func RangeHandler(reports report.Reports) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := parseDayParam(r, "from")
		if err != nil {
			writeError(w, "Invalid range", err)
			return
		}
		to, err := parseDayParam(r, "to")
		if err != nil {
			writeError(w, "Invalid range", err)
			return
		}

		rows, err := reports.CompletedBetween(r.Context(), from, to)
		if err != nil {
			writeError(w, "Failed to get completed matches", err)
			return
		}
		if wantsText(r) {
			lines := make([]string, 0, len(rows))
			for _, row := range rows {
				lines = append(lines, report.RangeLine(row))
			}
			writeLines(w, lines)
			return
		}
		if rows == nil {
			rows = []report.RangeRow{}
		}
		writeJSON(w, rows)
	}
}

// RankingHandler serves the win/loss ranking for a comma separated ids parameter.
func RankingHandler(reports report.Reports) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}

		rows, err := reports.Ranking(r.Context(), ids)
		if err != nil {
			writeError(w, "Failed to get ranking", err)
			return
		}
		if wantsText(r) {
			lines := make([]string, 0, len(rows))
			for _, row := range rows {
				lines = append(lines, report.RankingLine(row))
			}
			writeLines(w, lines)
			return
		}

		type rankingEntry struct {
			report.RankingRow
			Percent string `json:"percent"`
		}
		entries := make([]rankingEntry, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, rankingEntry{RankingRow: row, Percent: row.PercentString()})
		}
		writeJSON(w, entries)
	}
}

// StatsHandler serves the persisted processing counters.
func StatsHandler(counters metrics.MetricsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := counters.GetAll(r.Context())
		if err != nil {
			log.Error("Failed to get stats", "error", err)
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, stats)
	}
}

func parseDayParam(r *http.Request, name string) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Time{}, badRequest(name, errors.New("is required"))
	}
	t, err := time.Parse(report.DayLayout, value)
	if err != nil {
		return time.Time{}, badRequest(name, err)
	}
	return t, nil
}
