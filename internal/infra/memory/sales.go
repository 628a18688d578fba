package memory

import (
	"context"
	"sort"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	"github.com/Ignaci05/Area51Bazar/internal/domain/report"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"
)

const saleListDefaultLimit = 200

type stateSales struct {
	st *state
}

func (r stateSales) Create(ctx context.Context, sale model.Sale) (model.Sale, error) {
	for _, s := range r.st.sales {
		if s.ID == sale.ID {
			return model.Sale{}, repo.ErrDuplicate
		}
	}
	items := make([]model.SaleItem, len(sale.Items))
	for i, it := range sale.Items {
		it.SaleID = sale.ID
		it.Position = i
		it.ID = int64(i + 1)
		items[i] = it
	}
	sale.Items = items
	r.st.sales = append(r.st.sales, sale)
	return sale, nil
}

func (r stateSales) FindByID(ctx context.Context, id string) (model.Sale, error) {
	for _, s := range r.st.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Sale{}, repo.ErrNotFound
}

func (r stateSales) List(ctx context.Context, f repo.SaleFilter) ([]model.Sale, error) {
	out := make([]model.Sale, 0)
	for _, s := range r.st.sales {
		if matchSale(s, f) {
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	limit := f.Limit
	if limit <= 0 {
		limit = saleListDefaultLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Limitは見ない
func (r stateSales) Summarize(ctx context.Context, f repo.SaleFilter) (report.Summary, error) {
	matched := make([]model.Sale, 0)
	for _, s := range r.st.sales {
		if matchSale(s, f) {
			matched = append(matched, s)
		}
	}
	return report.Tally(matched), nil
}

func matchSale(s model.Sale, f repo.SaleFilter) bool {
	if f.From != nil && s.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && s.CreatedAt.After(*f.To) {
		return false
	}
	return f.SellerID == "" || s.SellerID == f.SellerID
}

type lockedSales struct {
	s *Store
}

func (r *lockedSales) Create(ctx context.Context, sale model.Sale) (out model.Sale, err error) {
	r.s.withState(func(st *state) { out, err = stateSales{st: st}.Create(ctx, sale) })
	return
}

func (r *lockedSales) FindByID(ctx context.Context, id string) (out model.Sale, err error) {
	r.s.withState(func(st *state) { out, err = stateSales{st: st}.FindByID(ctx, id) })
	return
}

func (r *lockedSales) List(ctx context.Context, f repo.SaleFilter) (out []model.Sale, err error) {
	r.s.withState(func(st *state) { out, err = stateSales{st: st}.List(ctx, f) })
	return
}

func (r *lockedSales) Summarize(ctx context.Context, f repo.SaleFilter) (out report.Summary, err error) {
	r.s.withState(func(st *state) { out, err = stateSales{st: st}.Summarize(ctx, f) })
	return
}
