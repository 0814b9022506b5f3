// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) and contain no business logic.
// Lookups that find nothing return sql.ErrNoRows unchanged so services can map it.
package repository

import "errors"

var (
	// ErrInsufficientFunds is returned by conditional debits that would make a balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrDuplicateEmail is returned when the email unique constraint is violated.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateReferralCode is returned when the referral code unique constraint is violated.
	ErrDuplicateReferralCode = errors.New("referral code already taken")
	// ErrStale is returned by guarded updates whose precondition no longer holds.
	ErrStale = errors.New("row changed concurrently")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
