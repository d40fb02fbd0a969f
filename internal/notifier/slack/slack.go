package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rating-ledger/internal/metrics"
	"github.com/mauv0809/rating-ledger/internal/notifier"
	"github.com/slack-go/slack"
)

const (
	sendTimeout = 10 * time.Second
	timeLayout  = "Monday 02 Jan, 15:04"
	// maxStaleLines keeps reminders below Slack's section text limit.
	maxStaleLines = notifier.MaxStaleMatches
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendResultNotification(ctx context.Context, result notifier.MatchResult, dryRun bool) error {
	msg := s.formatResultNotification(result)
	_, _, err := s.sendMessage(ctx, msg, dryRun)
	return err
}

func (s *Notifier) SendStaleReminder(ctx context.Context, matches []notifier.StaleMatch, dryRun bool) error {
	if len(matches) == 0 {
		return nil
	}
	msg := s.formatStaleReminder(matches)
	_, _, err := s.sendMessage(ctx, msg, dryRun)
	return err
}

// formatResultNotification creates the Slack message for a completed match using Block Kit.
func (s *Notifier) formatResultNotification(r notifier.MatchResult) slack.Message {
	blocks := make([]slack.Block, 0, 4)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Match result 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("%s vs %s\n%s to %s",
		r.HostName, r.GuestName,
		r.Start.UTC().Format(timeLayout), r.End.UTC().Format("15:04"))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	ratingFields := []*slack.TextBlockObject{
		slack.NewTextBlockObject("plain_text", fmt.Sprintf("%s: %d", r.HostName, r.PostRatingHost), true, false),
		slack.NewTextBlockObject("plain_text", fmt.Sprintf("%s: %d", r.GuestName, r.PostRatingGuest), true, false),
	}
	resultText := fmt.Sprintf("Result: %s won!", r.Winner())
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), ratingFields, nil))

	contextText := fmt.Sprintf("Match #%d", r.MatchID)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatStaleReminder lists scheduled matches that are still waiting for a result.
func (s *Notifier) formatStaleReminder(matches []notifier.StaleMatch) slack.Message {
	blocks := make([]slack.Block, 0, 3)

	headerText := slack.NewTextBlockObject("plain_text", "⏰ Results missing ⏰", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	lines := make([]string, 0, maxStaleLines)
	for i, m := range matches {
		if i == maxStaleLines {
			break
		}
		lines = append(lines, fmt.Sprintf("• #%d %s vs %s, %s", m.MatchID, m.HostID, m.GuestID, m.Start.UTC().Format(timeLayout)))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	if extra := len(matches) - maxStaleLines; extra > 0 {
		contextText := fmt.Sprintf("…and %d more", extra)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}
