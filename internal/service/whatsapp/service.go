package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/config"
	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/service/commands"
	client "github.com/mamadbah2/sitestock/pkg/clients/whatsapp"
)

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) WebhookStats
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// WebhookStats counts what happened to the messages of one callback.
type WebhookStats struct {
	Dispatched    int
	Duplicates    int
	Ignored       int
	ReplyFailures int
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	seen       MessageLog
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. A nil seen log keeps
// processed message ids in memory.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, c client.Client, dispatcher commands.Dispatcher, seen MessageLog, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if seen == nil {
		seen = NewMemoryMessageLog(defaultSeenTTL)
	}
	return &MetaWhatsAppService{
		cfg:        cfg,
		client:     c,
		dispatcher: dispatcher,
		seen:       seen,
		logger:     logger,
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook answers every inbound message and never fails, so the callback
// is always acknowledged. A message id is dispatched at most once. Command
// failures become reply text; reply delivery failures are logged and counted.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) WebhookStats {
	var stats WebhookStats

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				s.handleInboundMessage(ctx, msg, &stats)
			}
		}
	}

	return stats
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage, stats *WebhookStats) {
	text := msg.Body()
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("message_id", msg.ID), zap.String("type", msg.Type))
		stats.Ignored++
		return
	}

	if msg.ID != "" {
		first, err := s.seen.FirstSeen(ctx, msg.ID)
		if err != nil {
			s.logger.Warn("message log unavailable", zap.String("message_id", msg.ID), zap.Error(err))
		} else if !first {
			s.logger.Info("skipping redelivered message", zap.String("message_id", msg.ID), zap.String("from", msg.From))
			stats.Duplicates++
			return
		}
	}

	cmd := models.ParseCommand(text)
	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	stats.Dispatched++
	if err != nil {
		s.logger.Info("command rejected",
			zap.String("from", msg.From),
			zap.String("command", string(cmd.Type)),
			zap.Error(err))
		reply = replyForError(err)
	}

	if err := s.send(ctx, msg.From, reply, false); err != nil {
		s.logger.Error("failed to send command reply",
			zap.String("message_id", msg.ID),
			zap.String("to", msg.From),
			zap.Error(err))
		stats.ReplyFailures++
	}
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, previewURL bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	id, err := s.client.SendText(ctxWithTimeout, to, body, previewURL)
	if err != nil {
		return err
	}
	s.logger.Debug("message sent", zap.String("to", to), zap.String("message_id", id))
	return nil
}

func replyForError(err error) string {
	switch {
	case errors.Is(err, commands.ErrUnsupportedCommand), errors.Is(err, commands.ErrInvalidArguments):
		return "Unknown or incomplete command.\n" + commands.Usage
	default:
		return "Request failed: " + err.Error()
	}
}
