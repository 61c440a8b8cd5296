package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/repository"
	"github.com/mamadbah2/sitestock/internal/repository/sheets"
	"github.com/mamadbah2/sitestock/internal/service/stock"
)

const (
	dateLayout      = "2006-01-02"
	digestDataRange = "Digest!A:F"
)

// LedgerSource lists the ledger collections of every site.
type LedgerSource interface {
	AllLedgers(ctx context.Context) ([]models.SiteLedger, error)
}

// Service builds stock digests across sites.
type Service struct {
	ledgers   LedgerSource
	sites     repository.SiteResolver
	catalog   repository.MaterialCatalog
	sheets    sheets.Repository
	threshold decimal.Decimal
	logger    *zap.Logger
}

// NewService wires a reporting service. sheetsRepo may be nil to disable exports.
func NewService(ledgers LedgerSource, sites repository.SiteResolver, catalog repository.MaterialCatalog, sheetsRepo sheets.Repository, threshold decimal.Decimal, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledgers:   ledgers,
		sites:     sites,
		catalog:   catalog,
		sheets:    sheetsRepo,
		threshold: threshold,
		logger:    logger,
	}
}

// BuildDigest summarises the last running stock of every material at every site.
func (s *Service) BuildDigest(ctx context.Context, now time.Time) (models.Digest, error) {
	digest := models.Digest{GeneratedAt: now}

	all, err := s.ledgers.AllLedgers(ctx)
	if errors.Is(err, stock.ErrNotFound) {
		return digest, nil
	}
	if err != nil {
		return digest, fmt.Errorf("load ledgers: %w", err)
	}

	for _, site := range all {
		sd := models.SiteDigest{SiteID: site.SiteID, SiteName: site.SiteID}
		if resolved, err := s.sites.ResolveSite(ctx, site.SiteID); err == nil && resolved.Name != "" {
			sd.SiteName = resolved.Name
		} else if err != nil {
			s.logger.Debug("site name unavailable", zap.String("site_id", site.SiteID), zap.Error(err))
		}

		for i := range site.Materials {
			sd.Rows = append(sd.Rows, s.row(ctx, &site.Materials[i]))
		}
		digest.Sites = append(digest.Sites, sd)
	}

	return digest, nil
}

func (s *Service) row(ctx context.Context, l *models.MaterialLedger) models.DigestRow {
	row := models.DigestRow{MaterialID: l.MaterialID, MaterialName: l.MaterialID, Stock: l.LastStock()}
	if last, ok := l.Last(); ok {
		row.LastMovement = last.Date
	}
	row.Low = row.Stock.LessThanOrEqual(s.threshold)

	if m, err := s.catalog.ResolveMaterial(ctx, l.MaterialID); err == nil {
		if m.Name != "" {
			row.MaterialName = m.Name
		}
		row.Unit = m.Unit
	} else {
		s.logger.Debug("material name unavailable", zap.String("material_id", l.MaterialID), zap.Error(err))
	}
	return row
}

// ExportDigest appends one row per material to the digest sheet.
func (s *Service) ExportDigest(ctx context.Context, digest models.Digest) error {
	if s.sheets == nil {
		return nil
	}

	var rows [][]interface{}
	for _, site := range digest.Sites {
		for _, r := range site.Rows {
			lastMovement := ""
			if !r.LastMovement.IsZero() {
				lastMovement = r.LastMovement.Format(dateLayout)
			}
			rows = append(rows, []interface{}{
				digest.GeneratedAt.Format(dateLayout),
				site.SiteName,
				r.MaterialName,
				r.Stock.InexactFloat64(),
				lastMovement,
				r.Low,
			})
		}
	}

	if err := s.sheets.AppendRows(ctx, digestDataRange, rows); err != nil {
		return fmt.Errorf("export digest: %w", err)
	}
	return nil
}

// FormatDigest renders a digest as a chat message.
func FormatDigest(d models.Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock digest %s", d.GeneratedAt.Format(dateLayout))

	if len(d.Sites) == 0 {
		b.WriteString("\nNo stock recorded yet.")
		return b.String()
	}

	for _, site := range d.Sites {
		fmt.Fprintf(&b, "\n\n%s", site.SiteName)
		for _, r := range site.Rows {
			line := fmt.Sprintf("\n- %s: %s", r.MaterialName, r.Stock)
			if r.Unit != "" {
				line += " " + r.Unit
			}
			if r.Low {
				line += " (low)"
			}
			b.WriteString(line)
		}
	}

	if low := d.LowCount(); low > 0 {
		fmt.Fprintf(&b, "\n\n%d material(s) at or below the low-stock threshold.", low)
	}
	return b.String()
}
