package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SendGridSender delivers notifications via the SendGrid v3 mail API.
type SendGridSender struct {
	baseURL string
	apiKey  string
	from    string
	to      string
	client  *http.Client
	now     func() time.Time
}

// NewSendGridSender creates a SendGridSender for the given key and addresses.
func NewSendGridSender(apiKey, from, to string) *SendGridSender {
	return &SendGridSender{
		baseURL: "https://api.sendgrid.com",
		apiKey:  apiKey,
		from:    from,
		to:      to,
		client:  &http.Client{Timeout: 10 * time.Second},
		now:     time.Now,
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridMail struct {
	Personalizations []struct {
		To []sendGridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendGridAddress   `json:"from"`
	Subject string            `json:"subject"`
	Content []sendGridContent `json:"content"`
}

// Send posts an HTML-formatted mail to the SendGrid send endpoint.
func (s *SendGridSender) Send(ctx context.Context, subject, message string) error {
	mail := sendGridMail{
		From:    sendGridAddress{Email: s.from},
		Subject: subject,
		Content: []sendGridContent{{
			Type: "text/html",
			Value: fmt.Sprintf("<h2>%s</h2><p>%s</p><p><strong>Timestamp:</strong> %s</p>",
				subject, message, s.now().UTC().Format(time.RFC3339)),
		}},
	}
	mail.Personalizations = make([]struct {
		To []sendGridAddress `json:"to"`
	}, 1)
	mail.Personalizations[0].To = []sendGridAddress{{Email: s.to}}

	body, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("sendgrid: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sendgrid: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Name returns the sender identifier.
func (s *SendGridSender) Name() string {
	return "sendgrid"
}
