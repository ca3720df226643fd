// Package constants provides shared constants used across the codebase.
package constants

// Relay request constants
const (
	// MaxRelayBodySize caps the relay request body (base64 inflates images by ~4/3)
	MaxRelayBodySize = 32 << 20

	// MaxUploadSize is the maximum raw image size accepted by image acquisition (20MB)
	MaxUploadSize = 20 << 20
)

// CORS header values sent on every relay response.
const (
	CORSAllowOrigin      = "*"
	CORSAllowMethods     = "GET,OPTIONS,PATCH,DELETE,POST,PUT"
	CORSAllowHeaders     = "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version"
	CORSAllowCredentials = "true"
)

// Relay error messages returned in the {"error": ...} body.
const (
	ErrMsgMethodNotAllowed    = "Method not allowed"
	ErrMsgServerMisconfigured = "Server API Key not configured"
)
