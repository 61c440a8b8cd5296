package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/sitestock/internal/config"
)

func TestSendText(t *testing.T) {
	var got textMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/123/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.abc"}]}`))
	}))
	defer srv.Close()

	c := NewClient(config.WhatsAppConfig{BaseURL: srv.URL + "/", APIVersion: "v20.0", AccessToken: "tok", PhoneNumberID: "123"})

	id, err := c.SendText(context.Background(), "255700", "hello", true)
	require.NoError(t, err)
	assert.Equal(t, "wamid.abc", id)
	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "255700", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, textBody{Body: "hello", PreviewURL: true}, got.Text)
}

func TestSendText_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","code":100}}`))
	}))
	defer srv.Close()

	c := NewClient(config.WhatsAppConfig{BaseURL: srv.URL, APIVersion: "v20.0", AccessToken: "tok", PhoneNumberID: "123"})

	_, err := c.SendText(context.Background(), "255700", "hello", false)
	assert.EqualError(t, err, "whatsapp api error: code=100, message=Invalid parameter")
}
