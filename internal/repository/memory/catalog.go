package memory

import (
	"context"
	"sync"

	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/repository"
)

// Catalog is an in-memory site resolver and material catalog.
type Catalog struct {
	mu        sync.RWMutex
	sites     map[string]models.Site
	materials map[string]models.Material
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		sites:     make(map[string]models.Site),
		materials: make(map[string]models.Material),
	}
}

var (
	_ repository.SiteResolver    = (*Catalog)(nil)
	_ repository.MaterialCatalog = (*Catalog)(nil)
)

// AddSite registers a site.
func (c *Catalog) AddSite(site models.Site) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sites[site.ID] = site
}

// AddMaterial registers a material.
func (c *Catalog) AddMaterial(material models.Material) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.materials[material.ID] = material
}

func (c *Catalog) ResolveSite(_ context.Context, siteID string) (*models.Site, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	site, ok := c.sites[siteID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &site, nil
}

func (c *Catalog) ResolveMaterial(_ context.Context, materialID string) (*models.Material, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.materials[materialID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m.Categories = append([]string(nil), m.Categories...)
	return &m, nil
}
