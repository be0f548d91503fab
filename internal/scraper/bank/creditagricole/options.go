package creditagricole

import (
	"net/http"
	"time"

	"github.com/grez-lucas/ca-balance/internal/scraper/har"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultEndpoint is the Nord de France regional portal. Every regional
	// bank runs the same application on its own host.
	DefaultEndpoint  = "https://www.cr867-comete-g2-enligne.credit-agricole.fr/stb/entreeBam"
	DefaultOriginURL = "http://www.ca-norddefrance.fr"

	// DefaultTimeout is what callers are advised to pass to WithTimeout. A
	// Client built without that option never times out on its own.
	DefaultTimeout = 30 * time.Second

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

type clientConfig struct {
	endpoint  string
	originURL string
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
	recorder  *har.Recorder
	tracers   trace.TracerProvider
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		endpoint:  DefaultEndpoint,
		originURL: DefaultOriginURL,
		userAgent: DefaultUserAgent,
	}
}

// Option configures a Client.
type Option func(*clientConfig)

// WithEndpoint sets the URL both login requests are posted to.
func WithEndpoint(endpoint string) Option {
	return func(c *clientConfig) {
		c.endpoint = endpoint
	}
}

// WithOriginURL sets the regional site the login claims to come from.
func WithOriginURL(originURL string) Option {
	return func(c *clientConfig) {
		c.originURL = originURL
	}
}

// WithTimeout bounds every HTTP exchange. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithTransport replaces the network, e.g. with a har.Replayer in tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.transport = rt
	}
}

// WithRecorder captures every exchange of the session.
func WithRecorder(rec *har.Recorder) Option {
	return func(c *clientConfig) {
		c.recorder = rec
	}
}

// WithTracerProvider sends the session's spans to tp instead of the global
// provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *clientConfig) {
		c.tracers = tp
	}
}
