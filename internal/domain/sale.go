package domain

import "github.com/shopspring/decimal"

// SaleAmounts computes the total and profit of a sale line. Profit uses the
// purchase price passed in, which callers read at sale time.
func SaleAmounts(quantity int, unitPrice, purchasePrice decimal.Decimal) (total, profit decimal.Decimal) {
	q := decimal.NewFromInt(int64(quantity))
	total = q.Mul(unitPrice)
	profit = total.Sub(q.Mul(purchasePrice))
	return total, profit
}

// CheckStock rejects a sale of more units than are in stock.
func CheckStock(stock, quantity int) error {
	if quantity > stock {
		return ErrInsufficientStock
	}
	return nil
}
