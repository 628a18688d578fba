package usecase

import (
	"context"
	"errors"
	"fmt"

	repo "github.com/Ignaci05/Area51Bazar/internal/repository"
)

// UIが文言を解析しなくて済むように種類で返す
type ErrorKind string

const (
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindInsufficientStock      ErrorKind = "INSUFFICIENT_STOCK"
	KindValidation             ErrorKind = "VALIDATION_ERROR"
	KindUnauthorized           ErrorKind = "UNAUTHORIZED"
	KindForbidden              ErrorKind = "FORBIDDEN"
	KindConflictRetryExhausted ErrorKind = "CONFLICT_RETRY_EXHAUSTED"
	KindStockCeiling           ErrorKind = "STOCK_CEILING"
	KindConflict               ErrorKind = "CONFLICT"
	KindInternal               ErrorKind = "INTERNAL"
)

type Error struct {
	Kind    ErrorKind
	Message string
	// 在庫系のエラーのときだけ
	ProductID string
	Available *int64
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewError(kind ErrorKind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func IsKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

func NotFound(message string) error     { return NewError(KindNotFound, message) }
func Validation(message string) error   { return NewError(KindValidation, message) }
func Unauthorized(message string) error { return NewError(KindUnauthorized, message) }
func Forbidden(message string) error    { return NewError(KindForbidden, message) }
func Conflict(message string) error     { return NewError(KindConflict, message) }
func Internal(message string) error     { return NewError(KindInternal, message) }

// 商品が消えていた
func ProductMissing(productID string) error {
	return &Error{Kind: KindNotFound, Message: "product no longer exists", ProductID: productID}
}

// availableは今ある数量
func InsufficientStock(productID string, available int64, where string) error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("only %d units available in %s", available, where),
		ProductID: productID,
		Available: &available,
	}
}

func StockCeiling(productID string, available int64) error {
	return &Error{
		Kind:      KindStockCeiling,
		Message:   fmt.Sprintf("only %d units available in storefront", available),
		ProductID: productID,
		Available: &available,
	}
}

// repository層のエラーを種類に寄せる
func fromRepo(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, repo.ErrUserNotFound):
		return NotFound(notFoundMsg)
	case errors.Is(err, repo.ErrRetryExhausted), errors.Is(err, repo.ErrConflict):
		return NewError(KindConflictRetryExhausted, "too many concurrent updates, try again")
	case errors.Is(err, repo.ErrDuplicate):
		return Conflict("already exists")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Internal("request canceled")
	default:
		return Internal("db error")
	}
}
