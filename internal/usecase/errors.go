package usecase

import (
	"errors"
	"fmt"

	"pos/internal/domain/model"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 在庫不足で弾かれた行
type InsufficientStockLine struct {
	ProductID int64 `json:"product_id"`
	Requested int64 `json:"requested"`
	Available int64 `json:"available"`
}

// InsufficientStockError はLedgerの不変条件違反。
// バッチのどの行が原因かをすべて持つ。
type InsufficientStockError struct {
	Lines []InsufficientStockLine
}

func (e *InsufficientStockError) Error() string {
	if len(e.Lines) == 1 {
		l := e.Lines[0]
		return fmt.Sprintf("insufficient stock: product %d has %d, requested %d", l.ProductID, l.Available, -l.Requested)
	}
	return fmt.Sprintf("insufficient stock: %d lines", len(e.Lines))
}

// OverReceiptError は発注数を超える受領。
type OverReceiptError struct {
	ItemID          int64
	ProductID       int64
	QuantityOrdered int64
	AlreadyReceived int64
	Receiving       int64
}

func (e *OverReceiptError) Error() string {
	return fmt.Sprintf("over receipt: item %d ordered %d, already received %d, receiving %d",
		e.ItemID, e.QuantityOrdered, e.AlreadyReceived, e.Receiving)
}

// InvalidTransitionError は状態機械で許されない遷移。
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s %s -> %s", e.Entity, e.From, e.To)
}

// AlreadyVoidedError はCOMPLETED以外の取引への取消。
type AlreadyVoidedError struct {
	TransactionID int64
	Status        model.TransactionStatus
}

func (e *AlreadyVoidedError) Error() string {
	return fmt.Sprintf("transaction %d cannot be voided from status %s", e.TransactionID, e.Status)
}
