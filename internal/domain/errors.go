package domain

import "errors"

var (
	// ErrNotFound is returned by stores when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned by stores when required fields are missing.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownMarket is returned by the settlement evaluator when the market
	// text matches no known predicate. The signal stays PENDING.
	ErrUnknownMarket = errors.New("unknown market")

	// ErrRateLimited is returned by the feed client when the vendor throttles
	// a request past the retry budget.
	ErrRateLimited = errors.New("rate limited")
)
