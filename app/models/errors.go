package models

import "errors"

var (
	errNegativePrice = errors.New("price must not be negative")
	errNegativeFee   = errors.New("fees must not be negative")
	errLimitRange    = errors.New("minimum amount must not exceed the maximum amount")
)
