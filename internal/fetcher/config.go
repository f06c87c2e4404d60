package fetcher

import "time"

// User agents for the two identities. The crawler string is the smartphone
// Googlebot; the browser string is desktop Chrome on Windows.
const (
	GooglebotUserAgent = "Mozilla/5.0 (Linux; Android 6.0.1; Nexus 5X Build/MMB29P) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.6778.69 Mobile Safari/537.36 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	BrowserUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

type Config struct {
	// Timeout bounds the combined wall time of both identity requests.
	Timeout time.Duration

	CrawlerUserAgent string
	BrowserUserAgent string
	AcceptLanguage   string
}

func DefaultConfig() Config {
	return Config{
		Timeout:          15 * time.Second,
		CrawlerUserAgent: GooglebotUserAgent,
		BrowserUserAgent: BrowserUserAgent,
		AcceptLanguage:   "id-ID,id;q=0.9,en-US;q=0.8,en;q=0.7",
	}
}
