package constants

import "time"

// DefaultBaseURL is the base URL for the OpenSubtitles REST API.
const DefaultBaseURL = "https://www.opensubtitles.com/api/v1"

// Endpoint paths relative to DefaultBaseURL.
const (
	PathLogin     = "/login"
	PathLogout    = "/logout"
	PathSubtitles = "/subtitles"
	PathDownload  = "/download"
	PathUserInfo  = "/infos/user"
)

// RequestTimeout bounds every call made by the provider client.
const RequestTimeout = 30 * time.Second

// DefaultUserAgent is sent when the embedding application does not set one.
const DefaultUserAgent = "subfetch v0.1"

// CacheNamespace prefixes every key this provider writes to a shared cache.
const CacheNamespace = "os_com"

// TokenCacheKey is the well-known key the session token is stored under.
const TokenCacheKey = "user_token"

// SubtitleExtension is appended to downloaded subtitle file names.
const SubtitleExtension = ".srt"

// MaxSubtitleBytes caps the size of a downloaded subtitle payload.
const MaxSubtitleBytes = 10 << 20
