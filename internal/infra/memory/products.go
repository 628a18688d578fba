package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"
)

const productListDefaultLimit = 500

// ロックなし。Tx内かwithStateの中でだけ使う
type stateProducts struct {
	st *state
}

func (r stateProducts) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	category := strings.TrimSpace(q.Category)

	out := make([]model.Product, 0, len(r.st.products))
	for _, p := range r.st.products {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Barcode), needle) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if q.InStorefront && p.Stock.Storefront <= 0 {
			continue
		}
		out = append(out, p)
	}

	//新しい順、同時刻はID降順
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	limit := q.Limit
	if limit <= 0 {
		limit = productListDefaultLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r stateProducts) ListLowStock(ctx context.Context, below int64) ([]model.Product, error) {
	out := make([]model.Product, 0)
	for _, p := range r.st.products {
		if p.Stock.Storefront < below {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock.Storefront != out[j].Stock.Storefront {
			return out[i].Stock.Storefront < out[j].Stock.Storefront
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r stateProducts) FindByID(ctx context.Context, id string) (model.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r stateProducts) FindByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	for _, p := range r.st.products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

// Tx全体が排他なので通常の取得と同じ
func (r stateProducts) FindByIDForUpdate(ctx context.Context, id string) (model.Product, error) {
	return r.FindByID(ctx, id)
}

func (r stateProducts) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if _, ok := r.st.products[p.ID]; ok {
		return model.Product{}, repo.ErrDuplicate
	}
	if r.barcodeTaken(p.Barcode, p.ID) {
		return model.Product{}, repo.ErrDuplicate
	}
	r.st.products[p.ID] = p
	return p, nil
}

func (r stateProducts) Update(ctx context.Context, p model.Product) error {
	cur, ok := r.st.products[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if r.barcodeTaken(p.Barcode, p.ID) {
		return repo.ErrDuplicate
	}
	cur.Barcode = p.Barcode
	cur.Name = p.Name
	cur.Category = p.Category
	cur.Price = p.Price
	cur.Cost = p.Cost
	cur.Stock = p.Stock
	cur.UpdatedAt = p.UpdatedAt
	r.st.products[p.ID] = cur
	return nil
}

func (r stateProducts) SetStock(ctx context.Context, id string, expected model.Stock, next model.Stock) error {
	cur, ok := r.st.products[id]
	if !ok {
		return repo.ErrNotFound
	}
	if cur.Stock != expected {
		return repo.ErrConflict
	}
	cur.Stock = next
	r.st.products[id] = cur
	return nil
}

func (r stateProducts) Delete(ctx context.Context, id string) error {
	if _, ok := r.st.products[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.st.products, id)
	return nil
}

func (r stateProducts) barcodeTaken(barcode string, exceptID string) bool {
	for id, p := range r.st.products {
		if id != exceptID && p.Barcode == barcode {
			return true
		}
	}
	return false
}

type lockedProducts struct {
	s *Store
}

func (r *lockedProducts) List(ctx context.Context, q repo.ProductListQuery) (out []model.Product, err error) {
	r.s.withState(func(st *state) { out, err = stateProducts{st: st}.List(ctx, q) })
	return
}

func (r *lockedProducts) ListLowStock(ctx context.Context, below int64) (out []model.Product, err error) {
	r.s.withState(func(st *state) { out, err = stateProducts{st: st}.ListLowStock(ctx, below) })
	return
}

func (r *lockedProducts) FindByID(ctx context.Context, id string) (p model.Product, err error) {
	r.s.withState(func(st *state) { p, err = stateProducts{st: st}.FindByID(ctx, id) })
	return
}

func (r *lockedProducts) FindByBarcode(ctx context.Context, barcode string) (p model.Product, err error) {
	r.s.withState(func(st *state) { p, err = stateProducts{st: st}.FindByBarcode(ctx, barcode) })
	return
}

func (r *lockedProducts) FindByIDForUpdate(ctx context.Context, id string) (model.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *lockedProducts) Create(ctx context.Context, p model.Product) (out model.Product, err error) {
	r.s.withState(func(st *state) { out, err = stateProducts{st: st}.Create(ctx, p) })
	return
}

func (r *lockedProducts) Update(ctx context.Context, p model.Product) (err error) {
	r.s.withState(func(st *state) { err = stateProducts{st: st}.Update(ctx, p) })
	return
}

func (r *lockedProducts) SetStock(ctx context.Context, id string, expected model.Stock, next model.Stock) (err error) {
	r.s.withState(func(st *state) { err = stateProducts{st: st}.SetStock(ctx, id, expected, next) })
	return
}

func (r *lockedProducts) Delete(ctx context.Context, id string) (err error) {
	r.s.withState(func(st *state) { err = stateProducts{st: st}.Delete(ctx, id) })
	return
}
