package stock

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/sitestock/internal/domain/models"
)

// appendInbound adds stock on top of the last running balance.
func appendInbound(l *models.MaterialLedger, amount decimal.Decimal, description string, at time.Time) models.Transaction {
	tx := models.Transaction{
		Date:         at,
		Kind:         models.KindInbound,
		Inbound:      amount,
		Outbound:     decimal.Zero,
		Adjustment:   decimal.Zero,
		RunningStock: l.LastStock().Add(amount),
		Description:  description,
	}
	l.Transactions = append(l.Transactions, tx)
	return tx
}

// appendConsumption records an outbound or value movement. The ledger is left
// untouched when the amount exceeds the last running stock.
func appendConsumption(l *models.MaterialLedger, kind models.TransactionKind, amount decimal.Decimal, description string, at time.Time) (models.Transaction, error) {
	last := l.LastStock()
	if amount.GreaterThan(last) {
		return models.Transaction{}, &InsufficientStockError{Available: last, Requested: amount}
	}

	tx := models.Transaction{
		Date:         at,
		Kind:         kind,
		Inbound:      decimal.Zero,
		Outbound:     decimal.Zero,
		Adjustment:   decimal.Zero,
		RunningStock: last.Sub(amount),
		Description:  description,
	}
	if kind == models.KindValue {
		tx.Adjustment = amount
	} else {
		tx.Outbound = amount
	}

	l.Transactions = append(l.Transactions, tx)
	return tx, nil
}

// repair resets inbound, adjustment and running stock of a ledger decoded from
// mismatched arrays. Outbound quantities are kept. It reports whether it ran.
func repair(l *models.MaterialLedger) bool {
	if !l.Inconsistent {
		return false
	}
	for i := range l.Transactions {
		l.Transactions[i].Inbound = decimal.Zero
		l.Transactions[i].Adjustment = decimal.Zero
		l.Transactions[i].RunningStock = decimal.Zero
	}
	l.Inconsistent = false
	return true
}

// edit overwrites the provided fields at idx and recomputes running stock from
// idx to the end. On error the ledger is unchanged.
func edit(l *models.MaterialLedger, idx int, inbound, adjustment *decimal.Decimal) error {
	if idx < 0 || idx >= len(l.Transactions) {
		return &IndexRangeError{Index: idx, Length: len(l.Transactions)}
	}

	txs := make([]models.Transaction, len(l.Transactions))
	copy(txs, l.Transactions)

	if inbound != nil {
		txs[idx].Inbound = *inbound
	}
	if adjustment != nil {
		txs[idx].Adjustment = *adjustment
	}

	if err := recompute(txs, idx); err != nil {
		return err
	}

	l.Transactions = txs
	return nil
}

// recompute rebuilds running stock for txs[from:]. The edit-path balance is
// prev + inbound - adjustment; outbound quantities do not take part.
func recompute(txs []models.Transaction, from int) error {
	for j := from; j < len(txs); j++ {
		prev := decimal.Zero
		if j > 0 {
			prev = txs[j-1].RunningStock
		}

		next := prev.Add(txs[j].Inbound).Sub(txs[j].Adjustment)
		if next.IsNegative() {
			return &StockStateError{
				Index:      j,
				Previous:   prev,
				Inbound:    txs[j].Inbound,
				Adjustment: txs[j].Adjustment,
				Result:     next,
			}
		}
		txs[j].RunningStock = next
	}
	return nil
}
