package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MailGateway sends notifications through a transactional mail API
type MailGateway struct {
	apiURL string
	apiKey string
	sender string
	client *http.Client
}

// MailConfig holds configuration for the mail gateway
type MailConfig struct {
	APIURL string
	APIKey string
	Sender string
}

// NewMailGateway creates a new transactional mail client
func NewMailGateway(config MailConfig) *MailGateway {
	return &MailGateway{
		apiURL: config.APIURL,
		apiKey: config.APIKey,
		sender: config.Sender,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// sendMailRequest represents the mail API request structure
type sendMailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// sendMailResponse represents the mail API response structure
type sendMailResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
	Comment   string `json:"comment"`
	ErrCode   string `json:"errCode"`
}

// Send renders the template and posts it to the mail API
func (g *MailGateway) Send(recipient string, kind TemplateKind, payload map[string]interface{}) error {
	msg, err := Render(kind, payload)
	if err != nil {
		return err
	}

	mailReq := sendMailRequest{
		From:    g.sender,
		To:      recipient,
		Subject: msg.Subject,
		Text:    msg.Body,
	}

	jsonData, err := json.Marshal(mailReq)
	if err != nil {
		return fmt.Errorf("failed to marshal mail request: %w", err)
	}

	url := fmt.Sprintf("%s/messages", g.apiURL)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create mail request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read mail response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail API returned status %d: %s", resp.StatusCode, string(body))
	}

	var mailResp sendMailResponse
	if err := json.Unmarshal(body, &mailResp); err != nil {
		return fmt.Errorf("failed to parse mail response: %w", err)
	}

	if mailResp.Status != "" && mailResp.Status != "success" && mailResp.Status != "queued" {
		return fmt.Errorf("mail sending failed: %s (error code: %s)", mailResp.Comment, mailResp.ErrCode)
	}

	return nil
}

// Name returns the name of this gateway
func (g *MailGateway) Name() string {
	return "Mail API Gateway"
}
