package engine

import "errors"

// Validation errors: rejected before any mutation, not retryable as-is.
var (
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRugged        = errors.New("token has been rugged")
	ErrBelowMinTrade      = errors.New("below minimum trade amount")
	ErrInsufficientCash   = errors.New("insufficient cash balance")
	ErrInsufficientTokens = errors.New("insufficient token balance")
	ErrInvalidPool        = errors.New("invalid liquidity pool")
	ErrInvalidAmount      = errors.New("amount must be positive")
)

// ErrPriceImpact means the computed price impact exceeded the caller's
// slippage tolerance. Retryable with a wider tolerance.
var ErrPriceImpact = errors.New("price impact exceeds slippage tolerance")

// Rug pull errors.
var (
	ErrNotCreator      = errors.New("only the creator can rug this token")
	ErrAlreadyRugged   = errors.New("token already rugged")
	ErrLiquidityLocked = errors.New("liquidity is locked")
)

// Token creation errors.
var (
	ErrSymbolTaken       = errors.New("symbol already exists")
	ErrSupplyTooLarge    = errors.New("total supply exceeds maximum")
	ErrLiquidityTooSmall = errors.New("initial liquidity below minimum")
	ErrTooManyTokens     = errors.New("creator token limit reached")
)
