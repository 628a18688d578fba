package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/infra/feed"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"

	"github.com/shopspring/decimal"
)

// 販売の確定と参照
type SaleUsecase struct {
	tx    repo.TransactionManager
	sales repo.SaleRepository
	users repo.UserRepository
	deps  Deps
}

// DI
func NewSaleUsecase(tx repo.TransactionManager, sales repo.SaleRepository, users repo.UserRepository, deps Deps) *SaleUsecase {
	return &SaleUsecase{
		tx:    tx,
		sales: sales,
		users: users,
		deps:  deps.withDefaults(),
	}
}

// カートの1行。単価はカートに入れた時点のもの
type SaleLineInput struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

type CommitSaleInput struct {
	Lines []SaleLineInput
	// nilなら明細から計算する
	Total         *decimal.Decimal
	SellerID      string
	SellerName    string
	PaymentMethod string
}

// 商品ごとの合計数量（同じ商品の行はまとめる）
type demand struct {
	productID string
	quantity  int64
}

func (in CommitSaleInput) validate() (model.PaymentMethod, decimal.Decimal, []demand, error) {
	if strings.TrimSpace(in.SellerID) == "" {
		return "", decimal.Zero, nil, Validation("seller required")
	}
	if len(in.Lines) == 0 {
		return "", decimal.Zero, nil, Validation("at least one line required")
	}
	method, err := model.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return "", decimal.Zero, nil, Validation("payment_method must be cash or card")
	}

	total := decimal.Zero
	var demands []demand
	index := map[string]int{}
	for _, l := range in.Lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return "", decimal.Zero, nil, Validation("product_id required")
		}
		if l.Quantity < 1 {
			return "", decimal.Zero, nil, Validation("quantity must be >= 1")
		}
		if err := validateMoney("unit_price", l.UnitPrice); err != nil {
			return "", decimal.Zero, nil, err
		}
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))

		if i, ok := index[l.ProductID]; ok {
			demands[i].quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(demands)
		demands = append(demands, demand{productID: l.ProductID, quantity: l.Quantity})
	}

	if in.Total != nil {
		if in.Total.IsNegative() {
			return "", decimal.Zero, nil, Validation("total must be >= 0")
		}
		if !in.Total.Equal(total) {
			return "", decimal.Zero, nil, Validation("total does not match lines")
		}
	}
	return method, total, demands, nil
}

// 店頭在庫の減算と販売の追加を1つのTxで行う。どれか1行でも足りなければ何も書かない
func (u *SaleUsecase) CommitSale(ctx context.Context, in CommitSaleInput) (model.Sale, error) {
	method, total, demands, err := in.validate()
	if err != nil {
		u.deps.Metrics.ObserveSale(resultLabel(err), string(method), 0)
		return model.Sale{}, err
	}

	sellerName := strings.TrimSpace(in.SellerName)
	if sellerName == "" {
		seller, err := u.users.FindByID(ctx, in.SellerID)
		if err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return model.Sale{}, Unauthorized("unknown seller")
			}
			return model.Sale{}, fromRepo(err, "seller not found")
		}
		sellerName = seller.Name
	}

	//ロック順はID昇順（デッドロック防止）
	lockOrder := make([]string, 0, len(demands))
	for _, d := range demands {
		lockOrder = append(lockOrder, d.productID)
	}
	sort.Strings(lockOrder)

	var created model.Sale
	txCtx := context.WithoutCancel(ctx)
	err = u.tx.WithinTx(txCtx, func(r repo.TxRepos) error {
		//先に全部読む
		current := make(map[string]model.Product, len(lockOrder))
		for _, id := range lockOrder {
			p, err := r.Products().FindByIDForUpdate(txCtx, id)
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			current[id] = p
		}

		//在庫を確定時に再チェックして減らす
		for _, d := range demands {
			p, ok := current[d.productID]
			if !ok {
				return ProductMissing(d.productID)
			}
			if d.quantity > p.Stock.Storefront {
				return InsufficientStock(p.ID, p.Stock.Storefront, "storefront")
			}
		}
		for _, d := range demands {
			p := current[d.productID]
			next := model.Stock{
				Warehouse:  p.Stock.Warehouse,
				Storefront: p.Stock.Storefront - d.quantity,
			}
			if err := r.Products().SetStock(txCtx, p.ID, p.Stock, next); err != nil {
				return err
			}
		}

		items := make([]model.SaleItem, 0, len(in.Lines))
		for i, l := range in.Lines {
			name := strings.TrimSpace(l.Name)
			if name == "" {
				name = current[l.ProductID].Name
			}
			items = append(items, model.SaleItem{
				Position:          i,
				ProductID:         l.ProductID,
				NameSnapshot:      name,
				UnitPriceSnapshot: l.UnitPrice,
				Quantity:          l.Quantity,
			})
		}

		sale, err := r.Sales().Create(txCtx, model.Sale{
			ID:            u.deps.IDs.NewID(),
			Items:         items,
			Total:         total,
			SellerID:      in.SellerID,
			SellerName:    sellerName,
			PaymentMethod: method,
			CreatedAt:     u.deps.Clock.Now(),
		})
		if err != nil {
			return err
		}
		created = sale
		return nil
	})
	if err != nil {
		err = fromRepo(err, "product not found")
		u.deps.Metrics.ObserveSale(resultLabel(err), string(method), 0)
		if e, ok := AsError(err); ok && e.Kind == KindConflictRetryExhausted {
			u.deps.Log.WarnContext(ctx, "sale commit gave up", slog.String("seller_id", in.SellerID))
		}
		return model.Sale{}, err
	}

	amount, _ := created.Total.Float64()
	u.deps.Metrics.ObserveSale("ok", string(method), amount)
	u.deps.Log.InfoContext(ctx, "sale committed",
		slog.String("sale_id", created.ID),
		slog.String("seller_id", created.SellerID),
		slog.String("total", created.Total.StringFixed(2)),
		slog.Int("lines", len(created.Items)),
	)
	u.deps.Notifier.Publish(ctx, feed.TopicProducts)
	u.deps.Notifier.Publish(ctx, feed.TopicSales)
	return created, nil
}

// 見ている人（販売員は自分の販売だけ）
type Viewer struct {
	UserID string
	Role   model.Role
}

func (u *SaleUsecase) GetSale(ctx context.Context, viewer Viewer, saleID string) (model.Sale, error) {
	if strings.TrimSpace(saleID) == "" {
		return model.Sale{}, Validation("invalid sale id")
	}
	s, err := u.sales.FindByID(ctx, saleID)
	if err != nil {
		return model.Sale{}, fromRepo(err, "sale not found")
	}

	switch viewer.Role {
	case model.RoleAdmin:
		return s, nil
	case model.RoleSeller:
		if s.SellerID != viewer.UserID {
			return model.Sale{}, Forbidden("forbidden")
		}
		return s, nil
	default:
		return model.Sale{}, Unauthorized("unauthorized")
	}
}
