package whatsapp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/sitestock/internal/config"
	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/service/commands"
)

type sentMessage struct {
	to, body string
}

type fakeClient struct {
	sent []sentMessage
	err  error
}

func (f *fakeClient) SendText(_ context.Context, to, body string, _ bool) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return "wamid.1", nil
}

type fakeDispatcher struct {
	reply string
	err   error
	got   []models.Command
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	f.got = append(f.got, cmd)
	return f.reply, f.err
}

func payload(messages ...models.InboundMessage) models.WebhookPayload {
	return models.WebhookPayload{Entry: []models.WebhookEntry{{
		Changes: []models.WebhookChange{{Value: models.WebhookValue{Messages: messages}}},
	}}}
}

func textMessage(from, body string) models.InboundMessage {
	return models.InboundMessage{From: from, ID: "m-" + from, Type: "text", Text: &models.TextContent{Body: body}}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "secret"}, &fakeClient{}, &fakeDispatcher{}, nil, nil)

	challenge, err := svc.VerifyWebhookToken("subscribe", "secret", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "secret", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "42")
	assert.Error(t, err)
}

func TestHandleWebhook_RepliesWithCommandResult(t *testing.T) {
	client := &fakeClient{}
	dispatcher := &fakeDispatcher{reply: "Inbound recorded"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, client, dispatcher, nil, nil)

	stats := svc.HandleWebhook(context.Background(), payload(
		textMessage("255700", "/in s m 1 d"),
		models.InboundMessage{From: "255701", Type: "image"},
	))
	assert.Equal(t, WebhookStats{Dispatched: 1, Ignored: 1}, stats)

	require.Len(t, dispatcher.got, 1)
	assert.Equal(t, models.CommandInbound, dispatcher.got[0].Type)
	assert.Equal(t, []sentMessage{{to: "255700", body: "Inbound recorded"}}, client.sent)
}

func TestHandleWebhook_ButtonReplyCarriesCommand(t *testing.T) {
	dispatcher := &fakeDispatcher{reply: "ok"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, &fakeClient{}, dispatcher, nil, nil)

	msg := models.InboundMessage{From: "1", Type: "interactive", Interactive: &models.InteractiveContent{
		Type:        "button_reply",
		ButtonReply: &models.ButtonReply{ID: "/stock site-1", Title: "Stock"},
	}}
	svc.HandleWebhook(context.Background(), payload(msg))
	require.Len(t, dispatcher.got, 1)
	assert.Equal(t, models.CommandStock, dispatcher.got[0].Type)
}

func TestHandleWebhook_CommandErrorsBecomeReplies(t *testing.T) {
	client := &fakeClient{}
	dispatcher := &fakeDispatcher{err: commands.ErrInvalidArguments}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, client, dispatcher, nil, nil)

	svc.HandleWebhook(context.Background(), payload(textMessage("1", "/in")))
	require.Len(t, client.sent, 1)
	assert.True(t, strings.HasPrefix(client.sent[0].body, "Unknown or incomplete command."))
	assert.Contains(t, client.sent[0].body, commands.Usage)

	dispatcher.err = errors.New("not enough stock")
	svc.HandleWebhook(context.Background(), payload(textMessage("2", "/out s m 9 d")))
	assert.Equal(t, "Request failed: not enough stock", client.sent[1].body)
}

func TestHandleWebhook_ReplyFailureIsAcknowledged(t *testing.T) {
	client := &fakeClient{err: errors.New("graph down")}
	dispatcher := &fakeDispatcher{reply: "ok"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, client, dispatcher, nil, nil)

	stats := svc.HandleWebhook(context.Background(), payload(textMessage("1", "/in s m 5 d")))
	assert.Equal(t, WebhookStats{Dispatched: 1, ReplyFailures: 1}, stats)
	assert.Len(t, dispatcher.got, 1)
}

func TestHandleWebhook_RedeliveredMessageDispatchedOnce(t *testing.T) {
	client := &fakeClient{}
	dispatcher := &fakeDispatcher{reply: "ok"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, client, dispatcher, nil, nil)

	msg := textMessage("255700", "/in s m 5 d")
	first := svc.HandleWebhook(context.Background(), payload(msg))
	second := svc.HandleWebhook(context.Background(), payload(msg, msg))

	assert.Equal(t, WebhookStats{Dispatched: 1}, first)
	assert.Equal(t, WebhookStats{Duplicates: 2}, second)
	assert.Len(t, dispatcher.got, 1)
	assert.Len(t, client.sent, 1)
}

type failingLog struct{}

func (failingLog) FirstSeen(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestHandleWebhook_MessageLogFailureStillDispatches(t *testing.T) {
	dispatcher := &fakeDispatcher{reply: "ok"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, &fakeClient{}, dispatcher, failingLog{}, nil)

	stats := svc.HandleWebhook(context.Background(), payload(textMessage("1", "/stock s")))
	assert.Equal(t, 1, stats.Dispatched)
}

func TestMemoryMessageLog_ForgetsAfterTTL(t *testing.T) {
	log := NewMemoryMessageLog(time.Minute)
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	log.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := log.FirstSeen(ctx, "wamid.1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := log.FirstSeen(ctx, "wamid.1")
	require.NoError(t, err)
	assert.False(t, again)

	now = now.Add(2 * time.Minute)
	later, err := log.FirstSeen(ctx, "wamid.1")
	require.NoError(t, err)
	assert.True(t, later)
}

func TestSendOutbound(t *testing.T) {
	client := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, client, &fakeDispatcher{}, nil, nil)

	require.NoError(t, svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "9", Message: "digest"}))
	assert.Equal(t, []sentMessage{{to: "9", body: "digest"}}, client.sent)
}
