package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"

	"github.com/shopspring/decimal"
)

// レジ画面のカート操作。確定はSaleUsecaseに任せる
type RegisterUsecase struct {
	carts    repo.CartRepository
	products repo.ProductRepository
	sales    *SaleUsecase
	clock    Clock
	log      *slog.Logger

	locks sync.Map // map[string]*sync.Mutex
}

// DI
func NewRegisterUsecase(carts repo.CartRepository, products repo.ProductRepository, sales *SaleUsecase, deps Deps) *RegisterUsecase {
	deps = deps.withDefaults()
	return &RegisterUsecase{
		carts:    carts,
		products: products,
		sales:    sales,
		clock:    deps.Clock,
		log:      deps.Log,
	}
}

// レジ担当ごとのロック（同じカートへの同時操作を直列にする）
func (u *RegisterUsecase) lockForSeller(sellerID string) func() {
	v, _ := u.locks.LoadOrStore(sellerID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// 画面に返す形
type CartView struct {
	model.Cart
	Total decimal.Decimal `json:"total"`
}

func viewOf(c model.Cart) CartView {
	if c.Lines == nil {
		c.Lines = []model.CartLine{}
	}
	return CartView{Cart: c, Total: c.Total()}
}

// 販売員
type Seller struct {
	ID   string
	Name string
}

func (u *RegisterUsecase) GetCart(ctx context.Context, sellerID string) (CartView, error) {
	if strings.TrimSpace(sellerID) == "" {
		return CartView{}, Unauthorized("unauthorized")
	}
	c, err := u.carts.Get(ctx, sellerID)
	if err != nil {
		return CartView{}, Internal("cart store error")
	}
	return viewOf(c), nil
}

// カートを読み、fnで変えて保存する
func (u *RegisterUsecase) mutate(ctx context.Context, sellerID string, fn func(c *model.Cart) error) (CartView, error) {
	if strings.TrimSpace(sellerID) == "" {
		return CartView{}, Unauthorized("unauthorized")
	}
	unlock := u.lockForSeller(sellerID)
	defer unlock()

	c, err := u.carts.Get(ctx, sellerID)
	if err != nil {
		return CartView{}, Internal("cart store error")
	}
	if err := fn(&c); err != nil {
		return CartView{}, err
	}
	c.UpdatedAt = u.clock.Now()
	if err := u.carts.Save(ctx, c); err != nil {
		return CartView{}, Internal("cart store error")
	}
	return viewOf(c), nil
}

func (u *RegisterUsecase) AddProduct(ctx context.Context, sellerID string, productID string) (CartView, error) {
	if strings.TrimSpace(productID) == "" {
		return CartView{}, Validation("product_id required")
	}
	return u.mutate(ctx, sellerID, func(c *model.Cart) error {
		p, err := u.products.FindByID(ctx, productID)
		if err != nil {
			return fromRepo(err, "product not found")
		}
		return addToCart(c, p)
	})
}

// バーコードを読み取って追加
func (u *RegisterUsecase) Scan(ctx context.Context, sellerID string, barcode string) (CartView, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return CartView{}, Validation("barcode required")
	}
	return u.mutate(ctx, sellerID, func(c *model.Cart) error {
		p, err := u.products.FindByBarcode(ctx, barcode)
		if err != nil {
			return fromRepo(err, "product not found")
		}
		return addToCart(c, p)
	})
}

func addToCart(c *model.Cart, p model.Product) error {
	if err := c.Add(p); err != nil {
		if errors.Is(err, model.ErrStockCeiling) {
			return StockCeiling(p.ID, p.Stock.Storefront)
		}
		return err
	}
	return nil
}

func (u *RegisterUsecase) Increment(ctx context.Context, sellerID string, index int) (CartView, error) {
	return u.mutate(ctx, sellerID, func(c *model.Cart) error {
		return lineErr(c, index, c.Increment(index))
	})
}

func (u *RegisterUsecase) Decrement(ctx context.Context, sellerID string, index int) (CartView, error) {
	return u.mutate(ctx, sellerID, func(c *model.Cart) error {
		return lineErr(c, index, c.Decrement(index))
	})
}

func (u *RegisterUsecase) Remove(ctx context.Context, sellerID string, index int) (CartView, error) {
	return u.mutate(ctx, sellerID, func(c *model.Cart) error {
		return lineErr(c, index, c.Remove(index))
	})
}

func lineErr(c *model.Cart, index int, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrLineNotFound):
		return NotFound("cart line not found")
	case errors.Is(err, model.ErrStockCeiling):
		l := c.Lines[index]
		return StockCeiling(l.ProductID, l.MaxStock)
	default:
		return err
	}
}

// 取消（カートを空にする）
func (u *RegisterUsecase) Cancel(ctx context.Context, sellerID string) error {
	if strings.TrimSpace(sellerID) == "" {
		return Unauthorized("unauthorized")
	}
	unlock := u.lockForSeller(sellerID)
	defer unlock()

	if err := u.carts.Delete(ctx, sellerID); err != nil {
		return Internal("cart store error")
	}
	return nil
}

// カートの内容で販売を確定する。成功したらカートを空に、失敗したら残す
func (u *RegisterUsecase) Checkout(ctx context.Context, seller Seller, paymentMethod string) (model.Sale, error) {
	if strings.TrimSpace(seller.ID) == "" {
		return model.Sale{}, Unauthorized("unauthorized")
	}
	unlock := u.lockForSeller(seller.ID)
	defer unlock()

	c, err := u.carts.Get(ctx, seller.ID)
	if err != nil {
		return model.Sale{}, Internal("cart store error")
	}
	if c.Empty() {
		return model.Sale{}, Validation("cart is empty")
	}

	lines := make([]SaleLineInput, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, SaleLineInput{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	total := c.Total()

	sale, err := u.sales.CommitSale(ctx, CommitSaleInput{
		Lines:         lines,
		Total:         &total,
		SellerID:      seller.ID,
		SellerName:    seller.Name,
		PaymentMethod: paymentMethod,
	})
	if err != nil {
		u.refreshCeiling(ctx, c, err)
		return model.Sale{}, err
	}

	if err := u.carts.Delete(ctx, seller.ID); err != nil {
		//販売は確定済みなのでエラーにしない
		u.log.WarnContext(ctx, "cart clear failed", slog.String("seller_id", seller.ID), slog.Any("err", err))
	}
	return sale, nil
}

// 在庫不足のときは画面の上限を最新に合わせておく
func (u *RegisterUsecase) refreshCeiling(ctx context.Context, c model.Cart, err error) {
	e, ok := AsError(err)
	if !ok || e.Kind != KindInsufficientStock || e.Available == nil {
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == e.ProductID {
			c.Lines[i].MaxStock = *e.Available
		}
	}
	if err := u.carts.Save(ctx, c); err != nil {
		u.log.WarnContext(ctx, "cart save failed", slog.String("seller_id", c.SellerID), slog.Any("err", err))
	}
}
