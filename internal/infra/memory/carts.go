package memory

import (
	"context"
	"sync"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
)

type cartRepository struct {
	mu    sync.Mutex
	carts map[string]model.Cart
}

func newCartRepository() *cartRepository {
	return &cartRepository{carts: map[string]model.Cart{}}
}

func (r *cartRepository) Get(ctx context.Context, sellerID string) (model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[sellerID]
	if !ok {
		return model.NewCart(sellerID), nil
	}
	//呼び出し側の変更が保存前に漏れないように複製
	lines := make([]model.CartLine, len(c.Lines))
	copy(lines, c.Lines)
	c.Lines = lines
	return c, nil
}

func (r *cartRepository) Save(ctx context.Context, c model.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lines := make([]model.CartLine, len(c.Lines))
	copy(lines, c.Lines)
	c.Lines = lines
	r.carts[c.SellerID] = c
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, sellerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, sellerID)
	return nil
}
