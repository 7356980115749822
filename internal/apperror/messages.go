package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",
	CodeBadTokenConfig:     "Token configuration failed startup validation",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Market data (Bybit WS) errors
	CodeWSConnectFailed:  "Failed to connect to market data WebSocket",
	CodeWSAckTimeout:     "Timed out waiting for subscribe/unsubscribe ack",
	CodeWSNegativeAck:    "Market data server rejected subscription",
	CodeWSClosed:         "Market data WebSocket connection closed",
	CodeWSSendError:      "Failed to send WebSocket message",
	CodeMalformedBookRow: "Malformed order book row dropped",
	CodeOrderbookStale:   "Order book exceeded maximum age",

	// DEX (Jupiter) quote errors
	CodeQuoteRateLimited:      "Quote request rate limited",
	CodeQuoteServerError:      "Quote server returned an error",
	CodeQuoteTokenNotTradable: "Token has no tradable route on the DEX aggregator",
	CodeQuoteNoRoute:          "No swap route found for requested amount",
	CodeQuoteAmountTooBig:     "Requested amount exceeds available route liquidity",
	CodeQuoteStale:            "Quote exceeded maximum age",

	// Arbitrage detection errors
	CodePriceCalculationFailed: "Price calculation failed",
	CodeSpreadCalculationError: "Spread calculation error",
	CodeInsufficientLiquidity:  "Insufficient liquidity for trade size",
	CodeInvalidTradeSize:       "Invalid trade size",
	CodePriceRatioOutOfBounds:  "CEX/DEX price ratio outside sanity bounds",

	// Quarantine errors
	CodeQuarantineReadFailed:  "Failed to read quarantine state",
	CodeQuarantineWriteFailed: "Failed to write quarantine state",
	CodeTokenQuarantined:      "Token is currently quarantined",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
