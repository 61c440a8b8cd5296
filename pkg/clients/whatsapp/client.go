package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/sitestock/internal/config"
)

// Client sends text messages through the WhatsApp Cloud API.
type Client interface {
	SendText(ctx context.Context, to, body string, previewURL bool) (string, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	http          *resty.Client
	phoneNumberID string
}

// NewClient builds a client for the configured business phone number.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	return &APIClient{
		http: resty.New().
			SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
			SetAuthToken(cfg.AccessToken).
			SetHeader("Content-Type", "application/json").
			SetTimeout(15 * time.Second),
		phoneNumberID: cfg.PhoneNumberID,
	}
}

type textMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText sends body to a recipient and returns the message id assigned by Meta.
func (c *APIClient) SendText(ctx context.Context, to, body string, previewURL bool) (string, error) {
	result := new(sendResponse)
	apiErr := new(apiError)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(textMessage{
			MessagingProduct: "whatsapp",
			To:               to,
			Type:             "text",
			Text:             textBody{Body: body, PreviewURL: previewURL},
		}).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/messages", c.phoneNumberID))
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return "", fmt.Errorf("whatsapp api error: code=%d, message=%s", code, apiErr.Error.Message)
	}

	if len(result.Messages) == 0 {
		return "", nil
	}
	return result.Messages[0].ID, nil
}
