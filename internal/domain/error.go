package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrAlreadyExists       = errors.New("entity already exists")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInsufficientPoints  = errors.New("insufficient loyalty points")
	ErrDuplicatePriceID    = errors.New("price identifier already mapped to a plan")
	ErrUnknownPlan         = errors.New("unknown plan key")
	ErrNotOwned            = errors.New("record is not owned by the requesting user")
	ErrVerificationPending = errors.New("verification attempt already pending")
)
