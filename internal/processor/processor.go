package processor

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rating-ledger/internal/ledger"
	"github.com/mauv0809/rating-ledger/internal/metrics"
	"github.com/mauv0809/rating-ledger/internal/pubsub"
	"github.com/mauv0809/rating-ledger/internal/report"
)

const maxLineBytes = 1 << 20

// New creates a new Processor.
func New(l ledger.Ledger, reports report.Reports, reset ResetFunc, metrics metrics.Metrics, counters metrics.MetricsStore, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		ledger:   l,
		reports:  reports,
		reset:    reset,
		metrics:  metrics,
		counters: counters,
		pubsub:   pubsub,
	}
}

// ProcessFile applies every line of r in order and writes report output and
// Input-Invalid lines to w. It only fails when reading, writing or ctx fails;
// rejected lines are reported on w and processing continues.
func (p *Processor) ProcessFile(ctx context.Context, r io.Reader, w io.Writer) (Summary, error) {
	log.Info("Starting command processing...")
	var summary Summary

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		summary.Lines++

		startTime := time.Now()
		ok, err := p.processLine(ctx, line, w)
		p.metrics.ObserveProcessingDuration(time.Since(startTime).Seconds())
		if err != nil {
			return summary, err
		}
		p.counters.Increment(ctx, metrics.KeyLinesProcessed)
		if !ok {
			summary.Invalid++
			p.counters.Increment(ctx, metrics.KeyLinesInvalid)
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("failed to read commands: %w", err)
	}

	log.Info("Command processing finished.", "lines", summary.Lines, "invalid", summary.Invalid)
	return summary, nil
}

// processLine runs one non-blank line. It reports false when the line was
// answered with Input Invalid; the error is reserved for output failures.
func (p *Processor) processLine(ctx context.Context, line string, w io.Writer) (bool, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	fields, err := reader.Read()
	if err != nil || len(fields) == 0 {
		log.Debug("Unparseable line", "line", line, "error", err)
		return false, writeInvalid(w, line)
	}
	// Only the tag is trimmed; padded argument fields fail validation.
	fields[0] = strings.TrimSpace(fields[0])
	tag := fields[0]

	cmd, err := parseCommand(fields)
	if errors.Is(err, errUnknownTag) {
		log.Debug("Ignoring unknown tag", "tag", tag)
		return true, nil
	}
	p.metrics.IncCommandsProcessed(tag)
	p.counters.Increment(ctx, metrics.TagKey(tag))

	if err == nil {
		err = p.execute(ctx, cmd, w)
	}
	if err == nil {
		return true, nil
	}

	var outputErr *outputError
	if errors.As(err, &outputErr) {
		return false, outputErr.err
	}
	kind := ledger.KindOf(err)
	if kind == ledger.KindConflict {
		p.metrics.IncConflicts()
	}
	if !isWrite(tag) {
		if kind != ledger.KindNotFound {
			log.Warn("Read command failed", "tag", tag, "kind", kind, "error", err)
		}
		return true, nil
	}

	log.Info("Rejected command", "tag", tag, "kind", kind, "error", err)
	p.metrics.IncCommandsInvalid(tag)
	return false, writeInvalid(w, line)
}

func (p *Processor) execute(ctx context.Context, cmd any, w io.Writer) error {
	switch c := cmd.(type) {
	case resetCommand:
		if err := p.reset(ctx); err != nil {
			return err
		}
		log.Info("Ledger reset")
		return nil

	case createPlayerCommand:
		if err := p.ledger.CreatePlayer(ctx, c.player); err != nil {
			return err
		}
		event := pubsub.NewEvent(pubsub.EventPlayerCreated)
		event.PlayerID = c.player.ID
		p.publish(event)
		return nil

	case scheduleCommand:
		matchID, err := p.ledger.ScheduleMatch(ctx, c.hostID, c.guestID, c.start)
		if err != nil {
			return err
		}
		event := pubsub.NewEvent(pubsub.EventMatchScheduled)
		event.MatchID = matchID
		event.HostID = c.hostID
		event.GuestID = c.guestID
		event.Start = c.start
		p.publish(event)
		return nil

	case completeCommand:
		var matchID int64
		var err error
		if c.byKey {
			matchID, err = p.ledger.CompleteScheduled(ctx, c.completion)
		} else {
			matchID, err = p.ledger.CompleteMatch(ctx, c.completion)
		}
		if err != nil {
			return err
		}
		p.metrics.IncMatchesCompleted()
		p.publish(completedEvent(matchID, c.completion))
		return nil

	case playerSummaryCommand:
		player, err := p.reports.PlayerSummary(ctx, c.playerID)
		if err != nil {
			return err
		}
		return writeLines(w, report.PlayerLine(*player))

	case rankingCommand:
		rows, err := p.reports.Ranking(ctx, c.playerIDs)
		if err != nil {
			return err
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, report.RankingLine(row))
		}
		return writeLines(w, lines...)

	case completedRangeCommand:
		rows, err := p.reports.CompletedBetween(ctx, c.from, c.to)
		if err != nil {
			return err
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, report.RangeLine(row))
		}
		return writeLines(w, lines...)

	case historyCommand:
		history, err := p.reports.History(ctx, c.playerID)
		if err != nil {
			return err
		}
		return writeLines(w, report.HistoryLines(history)...)
	}
	return fmt.Errorf("unhandled command %T", cmd)
}

func completedEvent(matchID int64, c ledger.Completion) pubsub.LedgerEvent {
	event := pubsub.NewEvent(pubsub.EventMatchCompleted)
	event.MatchID = matchID
	event.HostID = c.HostID
	event.GuestID = c.GuestID
	event.Start = c.Start
	event.End = c.End
	event.HostWon = c.HostWon
	event.PostRatingHost = c.PostRatingHost
	event.PostRatingGuest = c.PostRatingGuest
	return event
}

// publish sends the event after the write has committed. Failures never
// affect the ledger.
func (p *Processor) publish(event pubsub.LedgerEvent) {
	if p.pubsub == nil {
		return
	}
	if err := p.pubsub.SendMessage(event.Type, event); err != nil {
		log.Warn("Failed to publish ledger event", "type", event.Type, "eventID", event.ID, "error", err)
	}
}

// outputError wraps failures of the output writer so they stop processing.
type outputError struct {
	err error
}

func (e *outputError) Error() string { return e.err.Error() }

func writeLines(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return &outputError{fmt.Errorf("failed to write output: %w", err)}
		}
	}
	return nil
}

func writeInvalid(w io.Writer, line string) error {
	if _, err := fmt.Fprintln(w, line+" Input Invalid"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
