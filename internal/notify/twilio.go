package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// smsMaxLen caps the SMS body so a single message segment is enough.
const smsMaxLen = 115

// TwilioSender delivers notifications as SMS via the Twilio Messages API.
// The subject is dropped and the body truncated to smsMaxLen; SMS is the
// terse channel, email carries the full text.
type TwilioSender struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	to         string
	client     *http.Client
}

// NewTwilioSender creates a TwilioSender for the given account and numbers.
func NewTwilioSender(accountSID, authToken, from, to string) *TwilioSender {
	return &TwilioSender{
		baseURL:    "https://api.twilio.com",
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		to:         to,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the message to the Twilio Messages endpoint.
func (t *TwilioSender) Send(ctx context.Context, _, message string) error {
	if len(message) > smsMaxLen {
		message = message[:smsMaxLen]
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		t.baseURL, url.PathEscape(t.accountSID))

	form := url.Values{}
	form.Set("From", t.from)
	form.Set("To", t.to)
	form.Set("Body", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("twilio: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Name returns the sender identifier.
func (t *TwilioSender) Name() string {
	return "twilio"
}
