package stock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/repository"
)

// Entry is a single append request against a site's material ledger.
type Entry struct {
	SiteID      string
	MaterialID  string
	Amount      decimal.Decimal
	Description string
}

// AppendResult describes a successful append.
type AppendResult struct {
	Ledger      *models.MaterialLedger
	Transaction models.Transaction
	Origin      models.LedgerOrigin
}

// EditRequest overwrites inbound and/or value at a historical index.
type EditRequest struct {
	SiteID     string
	MaterialID string
	Index      int
	Inbound    *decimal.Decimal
	Value      *decimal.Decimal
}

// EditResult describes the edited transaction after the cascade.
type EditResult struct {
	Index        int
	Inbound      decimal.Decimal
	Value        decimal.Decimal
	RunningStock decimal.Decimal
	Repaired     bool
	Ledger       *models.MaterialLedger
}

// Service implements the stock ledger operations.
type Service struct {
	ledgers repository.LedgerStore
	sites   repository.SiteResolver
	catalog repository.MaterialCatalog
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a stock service.
func NewService(ledgers repository.LedgerStore, sites repository.SiteResolver, catalog repository.MaterialCatalog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledgers: ledgers,
		sites:   sites,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// AppendInbound records a delivery, creating the ledger on first use.
func (s *Service) AppendInbound(ctx context.Context, e Entry) (AppendResult, error) {
	if err := validateEntry(e, "inbound"); err != nil {
		return AppendResult{}, err
	}
	if err := s.resolveRefs(ctx, e.SiteID, e.MaterialID); err != nil {
		return AppendResult{}, err
	}

	ledger, origin, err := s.ledgers.GetOrCreateLedger(ctx, e.SiteID, e.MaterialID)
	if err != nil {
		return AppendResult{}, fmt.Errorf("load ledger: %w", err)
	}

	tx := appendInbound(ledger, e.Amount, e.Description, s.now().UTC())
	if err := s.ledgers.UpsertLedger(ctx, ledger); err != nil {
		return AppendResult{}, fmt.Errorf("save ledger: %w", err)
	}

	s.logger.Info("inbound recorded",
		zap.String("site_id", e.SiteID),
		zap.String("material_id", e.MaterialID),
		zap.String("origin", string(origin)),
		zap.String("amount", e.Amount.String()),
		zap.String("stock", tx.RunningStock.String()))

	return AppendResult{Ledger: ledger, Transaction: tx, Origin: origin}, nil
}

// AppendOutbound records material consumed on site.
func (s *Service) AppendOutbound(ctx context.Context, e Entry) (AppendResult, error) {
	return s.appendConsumption(ctx, models.KindOutbound, e)
}

// AppendValue records a value consumption, tracked separately from outbound.
func (s *Service) AppendValue(ctx context.Context, e Entry) (AppendResult, error) {
	return s.appendConsumption(ctx, models.KindValue, e)
}

func (s *Service) appendConsumption(ctx context.Context, kind models.TransactionKind, e Entry) (AppendResult, error) {
	if err := validateEntry(e, string(kind)); err != nil {
		return AppendResult{}, err
	}
	if err := s.resolveRefs(ctx, e.SiteID, e.MaterialID); err != nil {
		return AppendResult{}, err
	}

	ledger, err := s.ledgers.GetLedger(ctx, e.SiteID, e.MaterialID)
	if errors.Is(err, repository.ErrNotFound) {
		return AppendResult{}, fmt.Errorf("%w: material %s does not exist in stock for site %s", ErrNoStockRecord, e.MaterialID, e.SiteID)
	}
	if err != nil {
		return AppendResult{}, fmt.Errorf("load ledger: %w", err)
	}

	tx, err := appendConsumption(ledger, kind, e.Amount, e.Description, s.now().UTC())
	if err != nil {
		return AppendResult{}, err
	}
	if err := s.ledgers.UpsertLedger(ctx, ledger); err != nil {
		return AppendResult{}, fmt.Errorf("save ledger: %w", err)
	}

	s.logger.Info("consumption recorded",
		zap.String("site_id", e.SiteID),
		zap.String("material_id", e.MaterialID),
		zap.String("kind", string(kind)),
		zap.String("amount", e.Amount.String()),
		zap.String("stock", tx.RunningStock.String()))

	return AppendResult{Ledger: ledger, Transaction: tx, Origin: models.OriginExisting}, nil
}

// PointEdit overwrites inbound and/or value at req.Index and recomputes the
// running stock of every later transaction. Nothing is persisted on failure.
func (s *Service) PointEdit(ctx context.Context, req EditRequest) (EditResult, error) {
	if req.Inbound == nil && req.Value == nil {
		return EditResult{}, invalidInput("inbound or value is required")
	}
	if req.Inbound != nil && req.Inbound.IsNegative() {
		return EditResult{}, invalidInput("invalid inbound %s", req.Inbound)
	}
	if req.Value != nil && req.Value.IsNegative() {
		return EditResult{}, invalidInput("invalid value %s", req.Value)
	}

	ledger, err := s.ledgers.GetLedger(ctx, req.SiteID, req.MaterialID)
	if errors.Is(err, repository.ErrNotFound) {
		return EditResult{}, fmt.Errorf("%w: stock data for material %s at site %s", ErrNotFound, req.MaterialID, req.SiteID)
	}
	if err != nil {
		return EditResult{}, fmt.Errorf("load ledger: %w", err)
	}

	if req.Index < 0 || req.Index >= ledger.Len() {
		return EditResult{}, &IndexRangeError{Index: req.Index, Length: ledger.Len()}
	}

	repaired := repair(ledger)
	if repaired {
		s.logger.Warn("ledger arrays re-initialized due to inconsistent lengths",
			zap.String("site_id", req.SiteID),
			zap.String("material_id", req.MaterialID))
	}

	if err := edit(ledger, req.Index, req.Inbound, req.Value); err != nil {
		return EditResult{}, err
	}
	if err := s.ledgers.UpsertLedger(ctx, ledger); err != nil {
		return EditResult{}, fmt.Errorf("save ledger: %w", err)
	}

	tx := ledger.Transactions[req.Index]
	s.logger.Info("stock history updated",
		zap.String("site_id", req.SiteID),
		zap.String("material_id", req.MaterialID),
		zap.Int("index", req.Index),
		zap.String("stock", tx.RunningStock.String()))

	return EditResult{
		Index:        req.Index,
		Inbound:      tx.Inbound,
		Value:        tx.Adjustment,
		RunningStock: tx.RunningStock,
		Repaired:     repaired,
		Ledger:       ledger,
	}, nil
}

// LatestPerMaterial returns the final state of every material tracked at a site.
func (s *Service) LatestPerMaterial(ctx context.Context, siteID string) ([]models.LatestEntry, error) {
	site, err := s.ledgers.GetSiteLedger(ctx, siteID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: no stock data found for site %s", ErrNotFound, siteID)
	}
	if err != nil {
		return nil, fmt.Errorf("load site ledger: %w", err)
	}
	if len(site.Materials) == 0 {
		return nil, fmt.Errorf("%w: no stock entries found for site %s", ErrNotFound, siteID)
	}

	out := make([]models.LatestEntry, 0, len(site.Materials))
	for i := range site.Materials {
		l := &site.Materials[i]
		row := models.LatestEntry{MaterialID: l.MaterialID}
		if last, ok := l.Last(); ok {
			row.LastValue = last.Adjustment
			row.LastStock = last.RunningStock
			row.LastDate = last.Date
		}
		if m, err := s.catalog.ResolveMaterial(ctx, l.MaterialID); err == nil {
			row.MaterialName = m.Name
		} else {
			s.logger.Debug("material name unavailable", zap.String("material_id", l.MaterialID), zap.Error(err))
		}
		out = append(out, row)
	}
	return out, nil
}

// History returns every transaction of a material, newest date first, joined
// with catalog metadata.
func (s *Service) History(ctx context.Context, siteID, materialID string) (*models.MaterialHistory, error) {
	ledger, err := s.ledgers.GetLedger(ctx, siteID, materialID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: material %s has no stock entry at site %s", ErrNotFound, materialID, siteID)
	}
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	material, err := s.catalog.ResolveMaterial(ctx, materialID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("resolve material: %w", err)
	}

	entries := make([]models.HistoryEntry, len(ledger.Transactions))
	for i, tx := range ledger.Transactions {
		entries[i] = models.HistoryEntry{
			Index:        i,
			Date:         tx.Date,
			Description:  tx.Description,
			Value:        tx.Adjustment,
			RunningStock: tx.RunningStock,
			Inbound:      tx.Inbound,
			Outbound:     tx.Outbound,
		}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Date.After(entries[b].Date)
	})

	return &models.MaterialHistory{Material: models.InfoOf(material), Entries: entries}, nil
}

// SiteLedger returns the full ledger collection of a site.
func (s *Service) SiteLedger(ctx context.Context, siteID string) (*models.SiteLedger, error) {
	if _, err := s.site(ctx, siteID); err != nil {
		return nil, err
	}

	ledger, err := s.ledgers.GetSiteLedger(ctx, siteID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: no stock data found for site %s", ErrNotFound, siteID)
	}
	if err != nil {
		return nil, fmt.Errorf("load site ledger: %w", err)
	}
	return ledger, nil
}

// AllLedgers returns the ledger collections of every site.
func (s *Service) AllLedgers(ctx context.Context) ([]models.SiteLedger, error) {
	all, err := s.ledgers.ListSiteLedgers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list site ledgers: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: no stock data found", ErrNotFound)
	}
	return all, nil
}

// site resolves a site, mapping a missing record onto ErrNotFound.
func (s *Service) site(ctx context.Context, siteID string) (*models.Site, error) {
	site, err := s.sites.ResolveSite(ctx, siteID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, siteID)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve site: %w", err)
	}
	return site, nil
}

func (s *Service) resolveRefs(ctx context.Context, siteID, materialID string) error {
	_, err := s.catalog.ResolveMaterial(ctx, materialID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: product %s", ErrNotFound, materialID)
	}
	if err != nil {
		return fmt.Errorf("resolve material: %w", err)
	}

	_, err = s.site(ctx, siteID)
	return err
}

func validateEntry(e Entry, field string) error {
	if strings.TrimSpace(e.Description) == "" {
		return invalidInput("%s and description are required", field)
	}
	if e.Amount.IsNegative() {
		return invalidInput("%s must not be negative", field)
	}
	return nil
}
