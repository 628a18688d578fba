package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// 店頭在庫の上限を超える
	ErrStockCeiling = errors.New("stock ceiling reached")
	// 明細の位置が範囲外
	ErrLineNotFound = errors.New("cart line not found")
)

// 1レジ担当につき1つ。確定までは保存先（memory / redis）にだけ置く。
// MaxStockはUI向けの目安で、確定時に必ず再チェックされる。
type Cart struct {
	SellerID  string     `json:"seller_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewCart(sellerID string) Cart {
	return Cart{SellerID: sellerID, Lines: []CartLine{}}
}

// 同じ商品なら+1、なければ数量1で末尾に追加
func (c *Cart) Add(p Product) error {
	for i := range c.Lines {
		if c.Lines[i].ProductID != p.ID {
			continue
		}
		//上限は最新の店頭在庫で更新する
		c.Lines[i].MaxStock = p.Stock.Storefront
		return c.Increment(i)
	}

	if p.Stock.Storefront < 1 {
		return ErrStockCeiling
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  1,
		MaxStock:  p.Stock.Storefront,
	})
	return nil
}

func (c *Cart) Increment(i int) error {
	if i < 0 || i >= len(c.Lines) {
		return ErrLineNotFound
	}
	if c.Lines[i].Quantity+1 > c.Lines[i].MaxStock {
		return ErrStockCeiling
	}
	c.Lines[i].Quantity++
	return nil
}

// 1の時はその明細を削除する
func (c *Cart) Decrement(i int) error {
	if i < 0 || i >= len(c.Lines) {
		return ErrLineNotFound
	}
	if c.Lines[i].Quantity > 1 {
		c.Lines[i].Quantity--
		return nil
	}
	return c.Remove(i)
}

func (c *Cart) Remove(i int) error {
	if i < 0 || i >= len(c.Lines) {
		return ErrLineNotFound
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Σ(単価 × 数量)
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
