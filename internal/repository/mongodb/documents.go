package mongodb

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/sitestock/internal/domain/models"
)

// stackDataDoc is one site's stock document. Field names follow the stored
// documents of the existing deployment.
type stackDataDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SiteID    primitive.ObjectID `bson:"siteId"`
	Type      []materialEntryDoc `bson:"type"`
	CreatedAt time.Time          `bson:"createdAt,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty"`
}

// materialEntryDoc stores a material ledger as index-aligned arrays.
type materialEntryDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	MaterialID  primitive.ObjectID `bson:"materialId"`
	Description []string           `bson:"description"`
	Values      []float64          `bson:"values"`
	Stock       []float64          `bson:"Stock"`
	Inbound     []float64          `bson:"inbound"`
	Outbound    []float64          `bson:"outbound"`
	Date        []time.Time        `bson:"date"`
	// NeedsRepair survives rewrites of a corrupted entry until the stock
	// column is recomputed.
	NeedsRepair bool `bson:"needsRepair,omitempty"`
}

type projectDoc struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"projectName"`
}

type productDoc struct {
	ID         primitive.ObjectID   `bson:"_id"`
	Name       string               `bson:"productName"`
	Unit       string               `bson:"UnitofMeasurement"`
	Categories []primitive.ObjectID `bson:"category"`
}

type categoryDoc struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"categoryName"`
}

// decodeEntry turns stored arrays into a transaction log. The date array
// defines the transaction count; missing numeric positions decode as zero and
// mark the ledger inconsistent, as does a pending repair marker.
func decodeEntry(siteID primitive.ObjectID, doc materialEntryDoc) *models.MaterialLedger {
	n := len(doc.Date)
	ledger := &models.MaterialLedger{
		ID:           doc.ID.Hex(),
		SiteID:       siteID.Hex(),
		MaterialID:   doc.MaterialID.Hex(),
		Transactions: make([]models.Transaction, n),
		Inconsistent: doc.NeedsRepair || len(doc.Stock) != n || len(doc.Values) != n || len(doc.Inbound) != n,
	}

	for i := 0; i < n; i++ {
		tx := models.Transaction{
			Date:         doc.Date[i],
			Inbound:      at(doc.Inbound, i),
			Outbound:     at(doc.Outbound, i),
			Adjustment:   at(doc.Values, i),
			RunningStock: at(doc.Stock, i),
		}
		if i < len(doc.Description) {
			tx.Description = doc.Description[i]
		}
		tx.Kind = kindOf(tx)
		ledger.Transactions[i] = tx
	}

	return ledger
}

// encodeEntry writes a transaction log back into index-aligned arrays.
func encodeEntry(ledger *models.MaterialLedger, entryID, materialID primitive.ObjectID) materialEntryDoc {
	n := len(ledger.Transactions)
	doc := materialEntryDoc{
		ID:          entryID,
		MaterialID:  materialID,
		Description: make([]string, n),
		Values:      make([]float64, n),
		Stock:       make([]float64, n),
		Inbound:     make([]float64, n),
		Outbound:    make([]float64, n),
		Date:        make([]time.Time, n),
		NeedsRepair: ledger.Inconsistent,
	}

	for i, tx := range ledger.Transactions {
		doc.Description[i] = tx.Description
		doc.Values[i] = tx.Adjustment.InexactFloat64()
		doc.Stock[i] = tx.RunningStock.InexactFloat64()
		doc.Inbound[i] = tx.Inbound.InexactFloat64()
		doc.Outbound[i] = tx.Outbound.InexactFloat64()
		doc.Date[i] = tx.Date
	}

	return doc
}

func decodeSite(doc stackDataDoc) *models.SiteLedger {
	site := &models.SiteLedger{
		ID:        doc.ID.Hex(),
		SiteID:    doc.SiteID.Hex(),
		Materials: make([]models.MaterialLedger, 0, len(doc.Type)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, entry := range doc.Type {
		site.Materials = append(site.Materials, *decodeEntry(doc.SiteID, entry))
	}
	return site
}

func at(values []float64, i int) decimal.Decimal {
	if i >= len(values) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(values[i])
}

// kindOf infers the kind of a stored transaction from the slot it moved.
func kindOf(tx models.Transaction) models.TransactionKind {
	switch {
	case tx.Outbound.IsPositive():
		return models.KindOutbound
	case tx.Adjustment.IsPositive():
		return models.KindValue
	default:
		return models.KindInbound
	}
}
