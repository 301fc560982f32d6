package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Mailer envía correos transaccionales. Las fallas de correo nunca hacen
// fallar la operación de negocio que las dispara.
type Mailer interface {
	SendWelcome(ctx context.Context, msg WelcomeMessage) error
	SendRecovery(ctx context.Context, msg RecoveryMessage) error
}

// WelcomeMessage es el correo de bienvenida con el token de activación.
type WelcomeMessage struct {
	Email    string
	UserName string
	Role     string
	URL      string
	Token    string
}

// RecoveryMessage es el correo de recuperación de cuenta.
type RecoveryMessage struct {
	Email string
	URL   string
}

// WebhookMailer publica los correos en el webhook del proveedor
// transaccional configurado.
type WebhookMailer struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookMailer crea el mailer; devuelve nil si no hay webhook
// configurado (el llamador debe caer al Noop).
func NewWebhookMailer(webhookURL string) *WebhookMailer {
	if webhookURL == "" {
		return nil
	}
	return &WebhookMailer{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (m *WebhookMailer) SendWelcome(ctx context.Context, msg WelcomeMessage) error {
	return m.post(ctx, map[string]any{
		"template": "welcome",
		"to":       msg.Email,
		"vars": map[string]string{
			"user_name": msg.UserName,
			"role":      msg.Role,
			"url":       fmt.Sprintf("%s/%s", msg.URL, msg.Token),
		},
	})
}

func (m *WebhookMailer) SendRecovery(ctx context.Context, msg RecoveryMessage) error {
	return m.post(ctx, map[string]any{
		"template": "recovery",
		"to":       msg.Email,
		"vars": map[string]string{
			"url": msg.URL,
		},
	})
}

func (m *WebhookMailer) post(ctx context.Context, payload map[string]any) error {
	if m == nil || m.webhookURL == "" {
		return errors.New("mailer no configurado")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("envío de correo falló con status %d", resp.StatusCode)
	}
	return nil
}

// Noop descarta los correos; se usa cuando no hay proveedor configurado.
type Noop struct{}

func (Noop) SendWelcome(ctx context.Context, msg WelcomeMessage) error   { return nil }
func (Noop) SendRecovery(ctx context.Context, msg RecoveryMessage) error { return nil }
