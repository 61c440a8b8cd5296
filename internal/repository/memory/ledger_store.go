// Package memory provides in-process implementations of the repository ports,
// used by tests and local runs without MongoDB.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/repository"
)

// LedgerStore keeps site ledger collections in a map. The mutex guards the map
// only; callers still perform unguarded read-modify-write cycles.
type LedgerStore struct {
	mu    sync.RWMutex
	sites map[string]*models.SiteLedger
	now   func() time.Time
}

// NewLedgerStore creates an empty store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		sites: make(map[string]*models.SiteLedger),
		now:   time.Now,
	}
}

var _ repository.LedgerStore = (*LedgerStore)(nil)

// GetLedger returns a copy of the stored ledger.
func (s *LedgerStore) GetLedger(_ context.Context, siteID, materialID string) (*models.MaterialLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	site, ok := s.sites[siteID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ledger, ok := site.Find(materialID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ledger.Clone(), nil
}

// GetOrCreateLedger returns the stored ledger or a new unsaved one.
func (s *LedgerStore) GetOrCreateLedger(ctx context.Context, siteID, materialID string) (*models.MaterialLedger, models.LedgerOrigin, error) {
	ledger, err := s.GetLedger(ctx, siteID, materialID)
	if err == nil {
		return ledger, models.OriginExisting, nil
	}
	if err != repository.ErrNotFound {
		return nil, "", err
	}
	return &models.MaterialLedger{SiteID: siteID, MaterialID: materialID}, models.OriginCreated, nil
}

// UpsertLedger stores a copy of the ledger under its (site, material) key.
// The Inconsistent flag is kept; only a repair clears it.
func (s *LedgerStore) UpsertLedger(_ context.Context, ledger *models.MaterialLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	site, ok := s.sites[ledger.SiteID]
	if !ok {
		site = &models.SiteLedger{SiteID: ledger.SiteID, CreatedAt: now}
		s.sites[ledger.SiteID] = site
	}
	site.UpdatedAt = now

	stored := ledger.Clone()
	if existing, ok := site.Find(ledger.MaterialID); ok {
		*existing = *stored
		return nil
	}
	site.Materials = append(site.Materials, *stored)
	return nil
}

// GetSiteLedger returns a copy of a site collection.
func (s *LedgerStore) GetSiteLedger(_ context.Context, siteID string) (*models.SiteLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	site, ok := s.sites[siteID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneSite(site)
	return &out, nil
}

// ListSiteLedgers returns copies of every collection ordered by site id.
func (s *LedgerStore) ListSiteLedgers(_ context.Context) ([]models.SiteLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SiteLedger, 0, len(s.sites))
	for _, site := range s.sites {
		out = append(out, cloneSite(site))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SiteID < out[j].SiteID })
	return out, nil
}

// Seed stores a ledger verbatim, including its Inconsistent flag. It lets tests
// reproduce corrupted records decoded from legacy documents.
func (s *LedgerStore) Seed(ledger *models.MaterialLedger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	site, ok := s.sites[ledger.SiteID]
	if !ok {
		site = &models.SiteLedger{SiteID: ledger.SiteID}
		s.sites[ledger.SiteID] = site
	}
	stored := ledger.Clone()
	if existing, ok := site.Find(ledger.MaterialID); ok {
		*existing = *stored
		return
	}
	site.Materials = append(site.Materials, *stored)
}

func cloneSite(site *models.SiteLedger) models.SiteLedger {
	out := *site
	out.Materials = make([]models.MaterialLedger, len(site.Materials))
	for i := range site.Materials {
		out.Materials[i] = *site.Materials[i].Clone()
	}
	return out
}
