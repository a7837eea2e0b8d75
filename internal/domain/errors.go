package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateWallet = errors.New("wallet with this address already exists")
)
