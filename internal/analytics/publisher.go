// Package analytics posts fire-and-forget telemetry events over HTTP.
//
// Delivery is at most once: no retry, no buffering. A failed post is logged
// and counted, and must never surface into the write path that triggered it.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zzeleznick/saaskit/internal/domain"
	"github.com/zzeleznick/saaskit/internal/metrics"
)

const defaultTimeout = 5 * time.Second

// Publisher implements domain.EventPublisher against an HTTP collector.
type Publisher struct {
	endpoint string
	client   *http.Client
}

var _ domain.EventPublisher = (*Publisher)(nil)

func New(endpoint string) *Publisher {
	return &Publisher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

func (p *Publisher) PublishItemCreated(ctx context.Context, event domain.ItemCreatedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		metrics.AnalyticsEventsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("marshal item-created event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		metrics.AnalyticsEventsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("build analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		metrics.AnalyticsEventsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("post item-created event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.AnalyticsEventsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("analytics sink responded %d", resp.StatusCode)
	}

	metrics.AnalyticsEventsTotal.WithLabelValues("ok").Inc()
	return nil
}

// NopPublisher drops every event; used when no sink is configured and in
// tests.
type NopPublisher struct{}

var _ domain.EventPublisher = NopPublisher{}

func (NopPublisher) PublishItemCreated(context.Context, domain.ItemCreatedEvent) error {
	return nil
}
