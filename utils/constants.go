package utils

import "time"

// ContextKey is the type used for request-scoped context values.
type ContextKey string

// Request-scoped context keys
const (
	RequestIDKey  ContextKey = "request_id"
	IPAddressKey  ContextKey = "ip_address"
	UserAgentKey  ContextKey = "user_agent"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Currency and rounding constants
const (
	// USDCurrency and ARSCurrency are the two currencies a cost basis is kept in
	USDCurrency = "USD"
	ARSCurrency = "ARS"

	// DefaultRequestTimeout bounds a request-scoped context
	DefaultRequestTimeout = 30 * time.Second
)
