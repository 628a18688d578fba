package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"

	"github.com/redis/go-redis/v9"
)

// 1シフト分残す
const cartTTL = 12 * time.Hour

// レジのカートをRedisにJSONで置く（端末を変えても続きから）
type cartRedisRepository struct {
	client redis.UniversalClient
	prefix string
}

func NewCartRedisRepository(client redis.UniversalClient) repo.CartRepository {
	return &cartRedisRepository{
		client: client,
		prefix: "pos:cart:",
	}
}

func (r *cartRedisRepository) key(sellerID string) string {
	return fmt.Sprintf("%s%s", r.prefix, sellerID)
}

func (r *cartRedisRepository) Get(ctx context.Context, sellerID string) (model.Cart, error) {
	data, err := r.client.Get(ctx, r.key(sellerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.NewCart(sellerID), nil
	}
	if err != nil {
		return model.Cart{}, err
	}

	var c model.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return model.Cart{}, err
	}
	if c.Lines == nil {
		c.Lines = []model.CartLine{}
	}
	return c, nil
}

func (r *cartRedisRepository) Save(ctx context.Context, c model.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(c.SellerID), data, cartTTL).Err()
}

func (r *cartRedisRepository) Delete(ctx context.Context, sellerID string) error {
	return r.client.Del(ctx, r.key(sellerID)).Err()
}
