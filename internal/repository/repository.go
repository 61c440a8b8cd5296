// Package repository declares the persistence ports shared by the store adapters.
package repository

import (
	"context"
	"errors"

	"github.com/mamadbah2/sitestock/internal/domain/models"
)

// ErrNotFound is returned by adapters when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// LedgerStore persists material ledgers grouped per site. Ledgers returned by a
// store are owned by the caller; mutating them has no effect until UpsertLedger.
type LedgerStore interface {
	// GetLedger loads the ledger of a material at a site.
	GetLedger(ctx context.Context, siteID, materialID string) (*models.MaterialLedger, error)

	// GetOrCreateLedger loads the ledger or returns a new empty one tagged as
	// created. A created ledger is not persisted until UpsertLedger.
	GetOrCreateLedger(ctx context.Context, siteID, materialID string) (*models.MaterialLedger, models.LedgerOrigin, error)

	// UpsertLedger replaces the stored ledger for its (site, material) key,
	// creating the site collection when needed. All-or-nothing per call.
	UpsertLedger(ctx context.Context, ledger *models.MaterialLedger) error

	// GetSiteLedger loads the ledger collection of a site.
	GetSiteLedger(ctx context.Context, siteID string) (*models.SiteLedger, error)

	// ListSiteLedgers loads every site collection.
	ListSiteLedgers(ctx context.Context) ([]models.SiteLedger, error)
}

// SiteResolver resolves project sites.
type SiteResolver interface {
	ResolveSite(ctx context.Context, siteID string) (*models.Site, error)
}

// MaterialCatalog resolves catalog metadata for materials.
type MaterialCatalog interface {
	ResolveMaterial(ctx context.Context, materialID string) (*models.Material, error)
}
