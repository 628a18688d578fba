// Package memory はプロセス内の台帳（STORE_DRIVER=memory とテスト用）。
// Txは1つのmutexで直列化し、作業コピーへの書き込みを成功時だけ差し替える。
package memory

import (
	"context"
	"sync"

	"github.com/Ignaci05/Area51Bazar/internal/domain/model"
	repo "github.com/Ignaci05/Area51Bazar/internal/repository"
)

// 台帳の中身（Txごとに複製される）
type state struct {
	products    map[string]model.Product
	sales       []model.Sale
	auditLogs   []model.AuditLog
	nextAuditID int64
}

func newState() *state {
	return &state{
		products:  map[string]model.Product{},
		sales:     []model.Sale{},
		auditLogs: []model.AuditLog{},
	}
}

// 販売と明細は追記後に書き換えないので浅いコピーで足りる
func (s *state) clone() *state {
	c := &state{
		products:    make(map[string]model.Product, len(s.products)),
		sales:       make([]model.Sale, len(s.sales), len(s.sales)+1),
		auditLogs:   make([]model.AuditLog, len(s.auditLogs), len(s.auditLogs)+1),
		nextAuditID: s.nextAuditID,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	copy(c.sales, s.sales)
	copy(c.auditLogs, s.auditLogs)
	return c
}

type Store struct {
	mu sync.Mutex
	st *state

	users *userRepository
	carts *cartRepository
}

func NewStore() *Store {
	return &Store{
		st:    newState(),
		users: newUserRepository(),
		carts: newCartRepository(),
	}
}

// Tx外の読み書き（1操作ずつロック）
func (s *Store) Products() repo.ProductRepository   { return &lockedProducts{s: s} }
func (s *Store) Sales() repo.SaleRepository         { return &lockedSales{s: s} }
func (s *Store) AuditLogs() repo.AuditLogRepository { return &lockedAuditLogs{s: s} }
func (s *Store) Users() repo.UserRepository         { return s.users }
func (s *Store) Carts() repo.CartRepository         { return s.carts }
func (s *Store) TxManager() repo.TransactionManager { return &txManager{s: s} }

func (s *Store) withState(fn func(st *state)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.st)
}

type txRepos struct {
	st *state
}

func (r txRepos) Products() repo.ProductRepository   { return stateProducts{st: r.st} }
func (r txRepos) Sales() repo.SaleRepository         { return stateSales{st: r.st} }
func (r txRepos) AuditLogs() repo.AuditLogRepository { return stateAuditLogs{st: r.st} }

type txManager struct {
	s *Store
}

// fnの中からStoreのTx外リポジトリを呼ぶとデッドロックする
func (tm *txManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tm.s.mu.Lock()
	defer tm.s.mu.Unlock()

	work := tm.s.st.clone()
	if err := fn(txRepos{st: work}); err != nil {
		return err
	}
	tm.s.st = work
	return nil
}
