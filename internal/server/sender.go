package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/femiolat/blastr/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// MessageSender delivers one SMS to one recipient.
type MessageSender interface {
	Send(ctx context.Context, to, body string) error
}

// ProviderSender submits messages to the SMS gateway's JSON API.
type ProviderSender struct {
	baseURL    string
	senderID   string
	apiKey     string
	httpClient *http.Client
}

// providerPayload is the gateway's send request body.
type providerPayload struct {
	To      string `json:"to"`
	From    string `json:"from"`
	SMS     string `json:"sms"`
	Type    string `json:"type"`
	Channel string `json:"channel"`
	APIKey  string `json:"api_key,omitempty"`
}

// NewProviderSender creates a gateway client from provider configuration.
//
// When client credentials are configured, requests go through an OAuth2
// client-credentials transport that refreshes tokens as needed; otherwise the
// static API key rides in the request body.
func NewProviderSender(cfg shared.ProviderConfig) *ProviderSender {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	if cfg.ClientID != "" && cfg.TokenURL != "" {
		creds := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		httpClient = creds.Client(context.Background())
		httpClient.Timeout = 30 * time.Second
	}

	return &ProviderSender{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		senderID:   cfg.SenderID,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

// Send delivers a single message through the gateway.
func (p *ProviderSender) Send(ctx context.Context, to, body string) error {
	payload := providerPayload{
		To:      to,
		From:    p.senderID,
		SMS:     body,
		Type:    "plain",
		Channel: "generic",
		APIKey:  p.apiKey,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode send payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/sms/send", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: gateway returned %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return nil
}

// Dispatcher runs send jobs in the background, pacing gateway calls with a
// rate limiter shared across jobs.
type Dispatcher struct {
	sender  MessageSender
	limiter *rate.Limiter
	logger  *log.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. ratePerSec caps gateway throughput; a
// non-positive value falls back to 1 message per second.
func NewDispatcher(sender MessageSender, ratePerSec float64, logger *log.Logger) *Dispatcher {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Dispatcher{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
		logger:  logger,
	}
}

// Dispatch starts the job in a background goroutine and returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, job *SendJob) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx, job)
	}()
}

// Wait blocks until every dispatched job has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, job *SendJob) {
	start := time.Now()
	job.start()

	d.logger.Info("send job started", "job", job.ID, "total", len(job.Targets))

	for _, target := range job.Targets {
		if err := d.limiter.Wait(ctx); err != nil {
			job.markFailed()
			continue
		}

		body := job.Message
		if job.Personalize {
			body = Personalize(job.Message, target.Fullname)
		}

		if err := d.sender.Send(ctx, target.Phone, body); err != nil {
			d.logger.Warn("send failed", "job", job.ID, "to", target.Phone, "error", err)
			job.markFailed()
			continue
		}
		job.markSent()
	}

	job.finish()

	snapshot := job.Snapshot()
	if snapshot.Failed > 0 {
		d.logger.Warn("send job finished with failures", "job", job.ID, "sent", snapshot.Sent, "failed", snapshot.Failed, "dur", time.Since(start))
	} else {
		d.logger.Info("send job finished", "job", job.ID, "sent", snapshot.Sent, "dur", time.Since(start))
	}
}

// Personalize substitutes the {name} placeholder with the recipient's first name.
func Personalize(message, fullname string) string {
	return strings.ReplaceAll(message, "{name}", shared.FirstName(fullname))
}
