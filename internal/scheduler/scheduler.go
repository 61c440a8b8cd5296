package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/config"
	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/service/reporting"
)

// DigestBuilder produces and exports stock digests.
type DigestBuilder interface {
	BuildDigest(ctx context.Context, now time.Time) (models.Digest, error)
	ExportDigest(ctx context.Context, digest models.Digest) error
}

// Sender delivers a text message to a recipient.
type Sender interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler runs the periodic stock digest.
type Scheduler struct {
	cron    *cron.Cron
	digests DigestBuilder
	sender  Sender
	cfg     config.DigestConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewScheduler creates a scheduler evaluating cfg.CronSchedule in cfg.Timezone.
// sender may be nil, in which case digests are only exported.
func NewScheduler(cfg config.DigestConfig, digests DigestBuilder, sender Sender, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		digests: digests,
		sender:  sender,
		cfg:     cfg,
		logger:  logger,
		now:     func() time.Time { return time.Now().In(loc) },
	}, nil
}

// Start registers the digest job and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.RunDigest); err != nil {
		return fmt.Errorf("schedule stock digest %q: %w", s.cfg.CronSchedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunDigest builds, exports and sends one digest.
func (s *Scheduler) RunDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	digest, err := s.digests.BuildDigest(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to build stock digest", zap.Error(err))
		return
	}

	if err := s.digests.ExportDigest(ctx, digest); err != nil {
		s.logger.Error("failed to export stock digest", zap.Error(err))
	}

	if s.sender == nil || s.cfg.Recipient == "" {
		s.logger.Debug("digest delivery disabled")
		return
	}

	req := models.OutboundMessageRequest{To: s.cfg.Recipient, Message: reporting.FormatDigest(digest)}
	if err := s.sender.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send stock digest", zap.Error(err))
		return
	}
	s.logger.Info("stock digest sent", zap.Int("sites", len(digest.Sites)), zap.Int("low", digest.LowCount()))
}
