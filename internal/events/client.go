package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects the service publishes and subscribes on.
const (
	SubjectCallAnalyzed    = "pulse.call.analyzed"
	SubjectCallSevere      = "pulse.call.severe"
	SubjectReportRequested = "pulse.report.requested"
	SubjectReportGenerated = "pulse.report.generated"
)

// CallAnalyzedEvent is emitted after every successfully persisted
// analysis, severe or not.
type CallAnalyzedEvent struct {
	CallID            string  `json:"call_id"`
	DurationSeconds   float64 `json:"duration_seconds"`
	StressedDetected  bool    `json:"stressed_detected"`
	IsSevereCase      bool    `json:"is_severe_case"`
	AnalysisTimestamp string  `json:"analysis_timestamp"`
}

// SevereCallEvent is emitted in addition to CallAnalyzedEvent when the
// severity classifier flags a call.
type SevereCallEvent struct {
	CallID            string  `json:"call_id"`
	DurationSeconds   float64 `json:"duration_seconds"`
	TopStressors      string  `json:"top_stressors"`
	AnalysisTimestamp string  `json:"analysis_timestamp"`
}

// ReportGeneratedEvent is emitted when a daily report has been built
// and mailed.
type ReportGeneratedEvent struct {
	MetricDate  string `json:"metric_date"`
	CallCount   int    `json:"call_count"`
	SevereCases int    `json:"severe_cases"`
	Recipients  int    `json:"recipients"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
