package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Products() ProductRepository
	Sales() SaleRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollback/再試行を隠す。
// fnは競合時に最初から呼び直されるので、Tx外の副作用を持たないこと。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
