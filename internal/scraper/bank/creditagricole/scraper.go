package creditagricole

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/cookiejar"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/grez-lucas/ca-balance/internal/scraper/bank"
	"github.com/grez-lucas/ca-balance/internal/scraper/markup"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"
)

const tracerName = "scraper/bank/creditagricole"

// Credentials are only held for the duration of one Connect call.
type Credentials struct {
	AccountNumber string
	Password      string
}

// Client is one authentication session against the portal. It owns its
// cookie jar; use one Client per concurrent login.
type Client struct {
	http      *resty.Client
	endpoint  string
	originURL string
	tracer    trace.Tracer
}

var _ bank.BankScraper = (*Client)(nil)

func NewClient(opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	httpClient := resty.New()
	if cfg.transport != nil {
		httpClient.SetTransport(cfg.transport)
	}
	httpClient.SetCookieJar(jar)
	httpClient.SetHeader("User-Agent", cfg.userAgent)
	httpClient.SetTimeout(cfg.timeout)
	httpClient.OnAfterResponse(logResponse)
	if cfg.recorder != nil {
		httpClient.OnAfterResponse(cfg.recorder.Middleware())
	}

	tracers := cfg.tracers
	if tracers == nil {
		tracers = otel.GetTracerProvider()
	}

	return &Client{
		http:      httpClient,
		endpoint:  cfg.endpoint,
		originURL: cfg.originURL,
		tracer:    tracers.Tracer(tracerName),
	}, nil
}

// originForm is what the public site posts when the user clicks "log in".
func (c *Client) originForm() map[string]string {
	return map[string]string{
		"TOP_ORIGINE":          "V",
		"vitrine":              "0",
		"largeur_ecran":        "800",
		"hauteur_ecran":        "600",
		"origine":              "vitrine",
		"situationTravail":     "BANQUAIRE",
		"canal":                "WEB",
		"typeAuthentification": "CLIC_ALLER",
		"urlOrigine":           c.originURL,
	}
}

// FetchLoginPage returns the page holding the login form and a freshly
// shuffled keypad. It also opens the server session in the cookie jar.
func (c *Client) FetchLoginPage(ctx context.Context) (string, error) {
	return c.post(ctx, "FetchLoginPage", c.originForm())
}

// Connect logs in and returns the landing page HTML. The two requests share
// the session cookies and run strictly one after the other.
//
// A landing page is returned even when the bank silently rejected the
// credentials; ParseAccounts then finds no account.
func (c *Client) Connect(ctx context.Context, creds Credentials) (string, error) {
	ctx, span := c.tracer.Start(ctx, "client:Connect",
		trace.WithAttributes(attribute.String("bank.endpoint", c.endpoint)))
	defer span.End()

	loginPage, err := c.FetchLoginPage(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return "", err
	}

	doc, err := markup.Parse(loginPage)
	if err != nil {
		err = &bank.ScraperError{
			BankCode:  bank.BankCreditAgricole,
			Operation: "Connect",
			Cause:     bank.ErrMalformedLoginPage,
			Details:   err.Error(),
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse login page")
		return "", err
	}

	fields, err := BuildLoginFields(doc, creds.AccountNumber, creds.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build login form")
		return "", err
	}

	landing, err := c.post(ctx, "SubmitLogin", fields)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit login form")
		return "", err
	}

	return landing, nil
}

// ConnectAndGetBalance logs in and returns every account of the landing
// page.
func (c *Client) ConnectAndGetBalance(ctx context.Context, creds Credentials) ([]bank.Account, error) {
	landing, err := c.Connect(ctx, creds)
	if err != nil {
		return nil, err
	}

	_, span := c.tracer.Start(ctx, "client:ParseAccounts")
	defer span.End()

	accounts, err := ParseAccounts(landing)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse accounts")
		return nil, err
	}

	return accounts, nil
}

// Balances implements bank.BankScraper.
func (c *Client) Balances(ctx context.Context, accountNumber, password string) ([]bank.Account, error) {
	return c.ConnectAndGetBalance(ctx, Credentials{AccountNumber: accountNumber, Password: password})
}

// post sends a form to the endpoint and returns the body decoded to UTF-8.
func (c *Client) post(ctx context.Context, op string, form map[string]string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(c.endpoint)
	if err != nil {
		return "", transportError(op, err)
	}

	if !res.IsSuccess() {
		return "", transportError(op, fmt.Errorf("unexpected status %d", res.StatusCode()))
	}

	body, err := decodeBody(res.Body(), res.Header().Get("Content-Type"))
	if err != nil {
		return "", transportError(op, err)
	}

	if strings.TrimSpace(body) == "" {
		return "", transportError(op, errors.New("empty body"))
	}

	return body, nil
}

// decodeBody converts the page to UTF-8. The portal serves ISO-8859-1, which
// the Content-Type header or a <meta> tag announces.
func decodeBody(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}

	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}

	return string(decoded), nil
}

func transportError(op string, err error) error {
	return &bank.ScraperError{
		BankCode:  bank.BankCreditAgricole,
		Operation: op,
		Cause:     fmt.Errorf("%w: %w", bank.ErrTransport, err),
	}
}

func logResponse(_ *resty.Client, res *resty.Response) error {
	slog.DebugContext(
		res.Request.Context(), "bank response",
		"method", res.Request.Method,
		"url", res.Request.URL,
		"status", res.StatusCode(),
		"bytes", len(res.Body()),
	)
	return nil
}
