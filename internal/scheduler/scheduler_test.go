package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/sitestock/internal/config"
	"github.com/mamadbah2/sitestock/internal/domain/models"
)

type fakeDigests struct {
	buildErr  error
	exportErr error
	built     []time.Time
	exported  int
}

func (f *fakeDigests) BuildDigest(_ context.Context, now time.Time) (models.Digest, error) {
	f.built = append(f.built, now)
	if f.buildErr != nil {
		return models.Digest{}, f.buildErr
	}
	return models.Digest{GeneratedAt: now}, nil
}

func (f *fakeDigests) ExportDigest(context.Context, models.Digest) error {
	f.exported++
	return f.exportErr
}

type fakeSender struct {
	sent []models.OutboundMessageRequest
}

func (f *fakeSender) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return nil
}

func digestConfig() config.DigestConfig {
	return config.DigestConfig{CronSchedule: "0 18 * * *", Timezone: "UTC", Recipient: "255700"}
}

func TestRunDigest_BuildsExportsAndSends(t *testing.T) {
	digests := &fakeDigests{}
	sender := &fakeSender{}
	s, err := NewScheduler(digestConfig(), digests, sender, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, time.July, 4, 18, 0, 0, 0, time.UTC) }

	s.RunDigest()

	assert.Len(t, digests.built, 1)
	assert.Equal(t, 1, digests.exported)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "255700", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Message, "Stock digest 2025-07-04")
}

func TestRunDigest_SendsEvenWhenExportFails(t *testing.T) {
	digests := &fakeDigests{exportErr: errors.New("quota")}
	sender := &fakeSender{}
	s, err := NewScheduler(digestConfig(), digests, sender, nil)
	require.NoError(t, err)

	s.RunDigest()
	assert.Len(t, sender.sent, 1)
}

func TestRunDigest_BuildFailureStops(t *testing.T) {
	digests := &fakeDigests{buildErr: errors.New("db down")}
	sender := &fakeSender{}
	s, err := NewScheduler(digestConfig(), digests, sender, nil)
	require.NoError(t, err)

	s.RunDigest()
	assert.Equal(t, 0, digests.exported)
	assert.Empty(t, sender.sent)
}

func TestRunDigest_NoSenderOnlyExports(t *testing.T) {
	digests := &fakeDigests{}
	s, err := NewScheduler(digestConfig(), digests, nil, nil)
	require.NoError(t, err)

	s.RunDigest()
	assert.Equal(t, 1, digests.exported)
}

func TestNewScheduler_Validation(t *testing.T) {
	cfg := digestConfig()
	cfg.Timezone = "Nowhere/City"
	_, err := NewScheduler(cfg, &fakeDigests{}, nil, nil)
	assert.Error(t, err)

	cfg = digestConfig()
	cfg.CronSchedule = "every evening"
	s, err := NewScheduler(cfg, &fakeDigests{}, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(digestConfig(), &fakeDigests{}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	s.Stop()
}
