package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DigestRow summarises one material in a stock digest.
type DigestRow struct {
	MaterialID   string          `json:"materialId"`
	MaterialName string          `json:"materialName"`
	Unit         string          `json:"unit,omitempty"`
	Stock        decimal.Decimal `json:"stock"`
	LastMovement time.Time       `json:"lastMovement"`
	Low          bool            `json:"low"`
}

// SiteDigest is the stock summary of a site at a point in time.
type SiteDigest struct {
	SiteID   string      `json:"siteId"`
	SiteName string      `json:"siteName"`
	Rows     []DigestRow `json:"rows"`
}

// Digest groups every site summary generated in one run.
type Digest struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	Sites       []SiteDigest `json:"sites"`
}

// LowCount returns how many rows are flagged as low stock.
func (d Digest) LowCount() int {
	n := 0
	for _, s := range d.Sites {
		for _, r := range s.Rows {
			if r.Low {
				n++
			}
		}
	}
	return n
}
