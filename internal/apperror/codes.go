package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeBadTokenConfig     Code = "BAD_TOKEN_CFG"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Market data (Bybit WS) errors
const (
	CodeWSConnectFailed  Code = "WS_CONNECT_FAILED"
	CodeWSAckTimeout     Code = "WS_ACK_TIMEOUT"
	CodeWSNegativeAck    Code = "WS_NEGATIVE_ACK"
	CodeWSClosed         Code = "WS_CLOSED"
	CodeWSSendError      Code = "WS_SEND_ERROR"
	CodeMalformedBookRow Code = "MALFORMED_BOOK_ROW"
	CodeOrderbookStale   Code = "ORDERBOOK_STALE"
)

// DEX (Jupiter) quote errors
const (
	CodeQuoteRateLimited      Code = "QUOTE_RATE_LIMITED"
	CodeQuoteServerError      Code = "QUOTE_SERVER_ERROR"
	CodeQuoteTokenNotTradable Code = "QUOTE_TOKEN_NOT_TRADABLE"
	CodeQuoteNoRoute          Code = "QUOTE_NO_ROUTE"
	CodeQuoteAmountTooBig     Code = "QUOTE_AMOUNT_TOO_BIG"
	CodeQuoteStale            Code = "QUOTE_STALE"
)

// Arbitrage detection errors
const (
	CodePriceCalculationFailed Code = "PRICE_CALCULATION_FAILED"
	CodeSpreadCalculationError Code = "SPREAD_CALCULATION_ERROR"
	CodeInsufficientLiquidity  Code = "INSUFFICIENT_LIQUIDITY"
	CodeInvalidTradeSize       Code = "INVALID_TRADE_SIZE"
	CodePriceRatioOutOfBounds  Code = "PRICE_RATIO_OUT_OF_BOUNDS"
)

// Quarantine errors
const (
	CodeQuarantineReadFailed  Code = "QUARANTINE_READ_FAILED"
	CodeQuarantineWriteFailed Code = "QUARANTINE_WRITE_FAILED"
	CodeTokenQuarantined      Code = "TOKEN_QUARANTINED"
)

// Circuit breaker errors
const (
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
