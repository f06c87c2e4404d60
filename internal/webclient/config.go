package webclient

import "time"

type Client string

const (
	ClientNetHTTP Client = "nethttp"
)

// Config selects and tunes a WebClient backend.
type Config struct {
	Client Client

	// Timeout caps a single request. Callers usually impose a tighter
	// deadline through the request context.
	Timeout time.Duration

	// InsecureSkipVerify disables certificate validation. Scan targets are
	// often misconfigured and a bad certificate must not hide their content.
	InsecureSkipVerify bool

	// MaxRedirects is the number of hops followed before the last redirect
	// response is returned as is.
	MaxRedirects int

	// MaxBodyBytes truncates response bodies. Zero means no limit.
	MaxBodyBytes int64

	// Retries re-sends requests that failed or returned 5xx.
	Retries int
}

// DefaultConfig returns the settings used for scanning.
func DefaultConfig() Config {
	return Config{
		Client:             ClientNetHTTP,
		Timeout:            15 * time.Second,
		InsecureSkipVerify: true,
		MaxRedirects:       10,
		MaxBodyBytes:       5 << 20,
		Retries:            0,
	}
}
