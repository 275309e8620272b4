package pricing

import (
	"github.com/shopspring/decimal"

	"ecommerce-backend/services/order-service/internal/domain"
)

// Price joins cart lines with their catalog snapshots into priced order
// lines and the order total. Title and unit price are snapshotted at
// this instant.
//
// Stock enforcement is all-or-nothing: if any line's quantity exceeds
// current stock the whole order fails, with every offending product id
// reported. No clamping, no partial fulfillment.
func Price(items []domain.CartItem, products map[string]domain.ProductSnapshot) ([]domain.OrderLine, domain.Money, error) {
	lines := make([]domain.OrderLine, 0, len(items))
	total := domain.Money{Amount: decimal.Zero}

	var outOfStock []string
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, domain.Money{}, &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
		snap, ok := products[item.ProductID]
		if !ok {
			return nil, domain.Money{}, domain.ErrProductNotFound
		}
		if item.Quantity > snap.Stock {
			outOfStock = append(outOfStock, item.ProductID)
			continue
		}

		if total.Currency == "" {
			total.Currency = snap.Price.Currency
		} else if snap.Price.Currency != total.Currency {
			return nil, domain.Money{}, &domain.ValidationError{Field: "currency", Reason: "mixed currencies in cart"}
		}

		lineTotal := snap.Price.Amount.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines = append(lines, domain.OrderLine{
			ProductID: item.ProductID,
			Title:     snap.Title,
			Quantity:  item.Quantity,
			UnitPrice: snap.Price,
			LineTotal: domain.Money{Amount: lineTotal, Currency: snap.Price.Currency},
		})
		total.Amount = total.Amount.Add(lineTotal)
	}

	if len(outOfStock) > 0 {
		return nil, domain.Money{}, &domain.InsufficientStockError{ProductIDs: outOfStock}
	}
	return lines, total, nil
}
