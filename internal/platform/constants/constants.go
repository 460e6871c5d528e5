// Copyright (c) 2026 Atelier. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and cookie configuration.
  - Key Space: Prefixes for the denormalized gallery indices.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "atelier-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "atelier.gallery"

	// RefreshTokenCookieName is the name of the cookie that stores the refresh token.
	RefreshTokenCookieName = "refresh_token"

	// RefreshTokenCookiePath is the scoped path for the refresh token cookie.
	RefreshTokenCookiePath = "/api/v1/auth"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Gallery Key Space (KV Store Taxonomy)
//
// The works collection is persisted as four denormalized views plus the
// week and artist directories. Every key below maps to a single opaque
// JSON value; the store offers no multi-key atomicity.

const (
	// KeyWorkByID prefixes the by-ID singleton entries: works:id:<id> → Work.
	KeyWorkByID = "works:id:"

	// KeyWorksByArtist prefixes the per-artist maps: works:artist:<artistId> → map[id]Work.
	KeyWorksByArtist = "works:artist:"

	// KeyWorksByWeek prefixes the per-week maps: works:week:<year>:<week> → map[id]Work.
	KeyWorksByWeek = "works:week:"

	// KeyWorksAll is the unfiltered list: works:all → []Work.
	KeyWorksAll = "works:all"

	// KeyWeeks prefixes the yearly week directory: weeks:<year> → map[week]Week.
	KeyWeeks = "weeks:"

	// KeyArtists prefixes the yearly artist directory: artists:<year> → map[id]Artist.
	KeyArtists = "artists:"
)

// # Session Key Space (Redis, volatile)

const (
	RedisPrefixSession = "auth:session:"
)

// # Uploads

const (
	// MaxUploadBytes is the largest object a pre-signed URL may accept.
	MaxUploadBytes = 64 << 20 // 64 MiB

	// UploadURLTTL is the validity window of an issued pre-signed URL.
	UploadURLTTL = 15 * time.Minute
)
