package api

// API limits and constants.
const (
	// MaxBodySize bounds request bodies; entries carry inline base64 images.
	MaxBodySize = 16 << 20

	// Requests per second and burst allowed per client IP.
	ClientRate  = 20
	ClientBurst = 40
)

// Cache-Control header values.
const (
	CacheOneHour = "private, max-age=3600"
	CacheNoStore = "no-cache"
)
