package model

// ErrorKind classifies failures surfaced on a ScanResult.
type ErrorKind string

const (
	ErrKindNetwork       ErrorKind = "network"
	ErrKindParse         ErrorKind = "parse"
	ErrKindQuotaExceeded ErrorKind = "quota_exceeded"
	ErrKindCancelled     ErrorKind = "cancelled"
	ErrKindCrawlBound    ErrorKind = "crawl_bound"
	ErrKindInternal      ErrorKind = "internal"
)

// Fetch error kinds recorded on FetchError.Kind.
const (
	FetchErrDNS       = "dns"
	FetchErrConnect   = "connect"
	FetchErrTLS       = "tls"
	FetchErrTimeout   = "timeout"
	FetchErrCancelled = "cancelled"
	FetchErrNetwork   = "network"
)
