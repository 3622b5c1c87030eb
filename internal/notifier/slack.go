package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/cadre/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// maxListed caps how many errors or results are rendered into one message.
const maxListed = 5

// SlackNotifier posts run summaries to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each report to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends the report as a single Block Kit message. A 429 response is
// retried once after the advertised Retry-After.
func (s *SlackNotifier) Notify(r model.RunReport) error {
	body, err := json.Marshal(buildPayload(r))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		s.logger.Info("slack message sent", "run", r.Name, "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack message sent", "run", r.Name)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a dummy run report to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	return n.Notify(model.RunReport{
		Name:      "cadre test",
		Processed: 1,
		Updated:   1,
		Runtime:   42 * time.Millisecond,
		Results:   []string{"Integration verified"},
	})
}

// Summary renders the one-line outcome of a run.
func Summary(r model.RunReport) string {
	ms := r.Runtime.Milliseconds()
	if r.HasMore {
		return fmt.Sprintf("Updated %d records in %dms. More remaining, run again.", r.Updated, ms)
	}
	return fmt.Sprintf("Done! Updated %d records in %dms.", r.Updated, ms)
}

func bulletList(items []string) string {
	var b strings.Builder
	for i, it := range items {
		if i == maxListed {
			fmt.Fprintf(&b, "• …and %d more\n", len(items)-maxListed)
			break
		}
		b.WriteString("• " + it + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func buildPayload(r model.RunReport) slackPayload {
	icon := "✅"
	switch {
	case len(r.Errors) > 0:
		icon = "⚠️"
	case r.HasMore:
		icon = "⏳"
	}

	status := "Complete"
	if r.HasMore {
		status = "More remaining"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: icon + " " + r.Name},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Processed:*\n" + strconv.Itoa(r.Processed)},
				{Type: "mrkdwn", Text: "*Updated:*\n" + strconv.Itoa(r.Updated)},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Skipped:*\n" + strconv.Itoa(r.Skipped)},
				{Type: "mrkdwn", Text: "*Errors:*\n" + strconv.Itoa(len(r.Errors))},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Runtime:*\n" + r.Runtime.Round(time.Millisecond).String()},
				{Type: "mrkdwn", Text: "*Status:*\n" + status},
			},
		},
	}

	if len(r.Results) > 0 {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Results:*\n" + bulletList(r.Results)},
		})
	}
	if len(r.Errors) > 0 {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: "*Errors:*\n" + bulletList(r.Errors)},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})

	return slackPayload{Text: r.Name + ": " + Summary(r), Blocks: blocks}
}
