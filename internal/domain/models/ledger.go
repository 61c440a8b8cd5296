package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger transaction by the slot it moved.
type TransactionKind string

const (
	KindInbound  TransactionKind = "inbound"
	KindOutbound TransactionKind = "outbound"
	KindValue    TransactionKind = "value"
)

// LedgerOrigin tells whether a ledger was loaded from the store or freshly created.
type LedgerOrigin string

const (
	OriginExisting LedgerOrigin = "existing"
	OriginCreated  LedgerOrigin = "created"
)

// Transaction is a single stock movement of one material at one site.
type Transaction struct {
	Date         time.Time       `json:"date"`
	Kind         TransactionKind `json:"kind"`
	Inbound      decimal.Decimal `json:"inbound"`
	Outbound     decimal.Decimal `json:"outbound"`
	Adjustment   decimal.Decimal `json:"value"`
	RunningStock decimal.Decimal `json:"stock"`
	Description  string          `json:"description"`
}

// MaterialLedger is the ordered transaction log for a (site, material) pair.
// Order is append order; dates are informational.
type MaterialLedger struct {
	ID           string        `json:"id,omitempty"`
	SiteID       string        `json:"siteId"`
	MaterialID   string        `json:"materialId"`
	Transactions []Transaction `json:"transactions"`

	// Inconsistent is set by stores that decoded mismatched legacy arrays.
	Inconsistent bool `json:"-"`
}

// Len returns the number of transactions.
func (l *MaterialLedger) Len() int {
	return len(l.Transactions)
}

// LastStock returns the running stock after the final transaction, zero when empty.
func (l *MaterialLedger) LastStock() decimal.Decimal {
	if len(l.Transactions) == 0 {
		return decimal.Zero
	}
	return l.Transactions[len(l.Transactions)-1].RunningStock
}

// Last returns the final transaction and whether one exists.
func (l *MaterialLedger) Last() (Transaction, bool) {
	if len(l.Transactions) == 0 {
		return Transaction{}, false
	}
	return l.Transactions[len(l.Transactions)-1], true
}

// Clone returns a deep copy so callers can mutate without touching the source.
func (l *MaterialLedger) Clone() *MaterialLedger {
	if l == nil {
		return nil
	}
	out := *l
	out.Transactions = make([]Transaction, len(l.Transactions))
	copy(out.Transactions, l.Transactions)
	return &out
}

// SiteLedger groups every material ledger tracked at a site.
type SiteLedger struct {
	ID        string           `json:"id,omitempty"`
	SiteID    string           `json:"siteId"`
	Materials []MaterialLedger `json:"materials"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Find returns the ledger of a material in the collection.
func (s *SiteLedger) Find(materialID string) (*MaterialLedger, bool) {
	for i := range s.Materials {
		if s.Materials[i].MaterialID == materialID {
			return &s.Materials[i], true
		}
	}
	return nil, false
}

// LatestEntry is the most recent state of one material at a site.
type LatestEntry struct {
	MaterialID   string          `json:"materialId"`
	MaterialName string          `json:"materialName,omitempty"`
	LastValue    decimal.Decimal `json:"lastValue"`
	LastStock    decimal.Decimal `json:"lastStock"`
	LastDate     time.Time       `json:"lastDate"`
}

// HistoryEntry is a transaction projected for history views.
type HistoryEntry struct {
	Index        int             `json:"index"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description"`
	Value        decimal.Decimal `json:"value"`
	RunningStock decimal.Decimal `json:"stock"`
	Inbound      decimal.Decimal `json:"inbound"`
	Outbound     decimal.Decimal `json:"outbound"`
}

// MaterialHistory is a full ledger history joined with catalog metadata.
type MaterialHistory struct {
	Material MaterialInfo   `json:"material"`
	Entries  []HistoryEntry `json:"entries"`
}
