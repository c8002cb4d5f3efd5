package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/smtp"
	"time"

	"github.com/hibiken/asynq"
)

// SMTPConfig addresses the outbound mail relay. An empty Host disables real
// delivery and the worker logs the mail instead.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Deliverer executes mail:send and push:send tasks.
type Deliverer struct {
	smtp       SMTPConfig
	pushURL    string
	pushKey    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDeliverer constructs a Deliverer. pushURL is the web-push gateway
// endpoint; leave it empty to log push payloads instead of delivering.
func NewDeliverer(smtpCfg SMTPConfig, pushURL, pushKey string, logger *slog.Logger) *Deliverer {
	return &Deliverer{
		smtp:       smtpCfg,
		pushURL:    pushURL,
		pushKey:    pushKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// HandleSendMailTask processes TaskTypeSendMail tasks.
func (d *Deliverer) HandleSendMailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendMailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Mail.To == "" {
		return asynq.SkipRetry
	}
	if d.smtp.Host == "" {
		d.logger.Info("mail delivery skipped, smtp not configured",
			slog.String("to", payload.Mail.To),
			slog.String("subject", payload.Mail.Subject))
		return nil
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		d.smtp.From, payload.Mail.To, payload.Mail.Subject, payload.Mail.Body)
	addr := fmt.Sprintf("%s:%d", d.smtp.Host, d.smtp.Port)
	var auth smtp.Auth
	if d.smtp.Username != "" {
		auth = smtp.PlainAuth("", d.smtp.Username, d.smtp.Password, d.smtp.Host)
	}
	if err := smtp.SendMail(addr, auth, d.smtp.From, []string{payload.Mail.To}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", payload.Mail.To, err)
	}
	return nil
}

// HandleSendPushTask processes TaskTypeSendPush tasks.
func (d *Deliverer) HandleSendPushTask(ctx context.Context, t *asynq.Task) error {
	var payload SendPushPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Subscription == "" {
		return asynq.SkipRetry
	}
	if d.pushURL == "" {
		d.logger.Info("push delivery skipped, gateway not configured",
			slog.String("title", payload.Payload.Title))
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return asynq.SkipRetry
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.pushURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if d.pushKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.pushKey)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push gateway: status %d", resp.StatusCode)
	}
	return nil
}
