package constants

import "time"

// Context keys
const (
	ContextTokenData = "token_data"
	ContextRawToken  = "raw_token"
	ContextRequestID = "request_id"
)

// Timeouts
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultTimeout        = 5 * time.Second
	DefaultLockTimeout    = 3 * time.Second
)

// Database pool defaults
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 30 * time.Minute
)

// Postgres SQLSTATE codes worth telling apart in logs
const (
	PGLockNotAvailable     = "55P03"
	PGQueryCanceled        = "57014"
	PGSerializationFailure = "40001"
	PGDeadlockDetected     = "40P01"
	PGCheckViolation       = "23514"
)

// Redis keys
const (
	RedisKeyTokenBlacklist = "token:blacklist:"
	RedisKeyTagCatalog     = "tag:catalog"
	RedisKeyTagByName      = "tag:name:"
	RedisKeyLoginAttempt   = "login:attempt:"
)

// Login throttling
const (
	MaxLoginAttempts   = 5
	LoginAttemptWindow = 15 * time.Minute
)

// Pagination
const (
	DefaultPageNumber  = 1
	DefaultPageSize    = 20
	MaxPageSize        = 100
	DefaultSearchLimit = 50
	MaxSearchLimit     = 500
)

const (
	ScopeTokenAccess = "access"
	TokenTypeBearer  = "Bearer"
)

// Notification types
const (
	NotificationTypeLivestreamReserved = "livestream_reserved"
)
