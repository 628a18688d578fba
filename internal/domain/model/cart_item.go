package model

import "github.com/shopspring/decimal"

// カートの明細
// 追加時点の価格と、店頭在庫の上限（目安）を持つ。
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	MaxStock  int64           `json:"max_stock"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}
