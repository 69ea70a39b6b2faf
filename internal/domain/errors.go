package domain

import "errors"

var (
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrDuplicateReference = errors.New("duplicate transaction reference")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrAccountNotFound    = errors.New("account not found")
)
