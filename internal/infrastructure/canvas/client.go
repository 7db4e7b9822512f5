// Package canvas scrapes the Canvas business-management site with a
// browser-exported session and turns its reports into domain rows.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/mfluker/aod-dashboard/internal/config"
)

var (
	// ErrLoginRequired signals that Canvas served its login page instead of a report.
	ErrLoginRequired = errors.New("canvas session is not logged in")
	// ErrTableNotFound signals that a report page did not have the expected shape.
	ErrTableNotFound = errors.New("report table not found")
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	Cookies           []Cookie
	CampaignIDs       []int
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
	BrandPrefix       string
	Endpoints         config.EndpointsConfig
	Diagnostics       *Diagnostics
	Logger            *slog.Logger
}

// OptionsFromConfig maps the canvas config section onto client options.
func OptionsFromConfig(cfg config.CanvasConfig, cookies []Cookie, logger *slog.Logger) Options {
	return Options{
		BaseURL:           cfg.BaseURL,
		Cookies:           cookies,
		CampaignIDs:       cfg.CampaignIDs,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		UserAgent:         cfg.UserAgent,
		BrandPrefix:       cfg.BrandPrefix,
		Endpoints:         cfg.Endpoints,
		Diagnostics:       NewDiagnostics(cfg.DiagnosticsDir),
		Logger:            logger,
	}
}

// Client holds the authenticated session shared by every report fetcher.
type Client struct {
	http        *resty.Client
	campaignIDs []int
	brandPrefix string
	endpoints   config.EndpointsConfig
	diagnostics *Diagnostics
	logger      *slog.Logger
}

// NewClient builds a resty session with the exported cookies installed in its jar.
func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid canvas base url %q", opts.BaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	jar.SetCookies(base, sessionCookies(base, opts.Cookies))

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(base.String()).
		SetCookieJar(jar).
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10), resty.DomainCheckRedirectPolicy(base.Hostname()))
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	return &Client{
		http:        client,
		campaignIDs: append([]int(nil), opts.CampaignIDs...),
		brandPrefix: opts.BrandPrefix,
		endpoints:   opts.Endpoints,
		diagnostics: opts.Diagnostics.withLogger(logger),
		logger:      logger,
	}, nil
}

// sessionCookies installs every exported cookie as a host cookie of the base
// URL so domain-scoped exports also work against mirrors and test servers.
func sessionCookies(base *url.URL, cookies []Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		hc := c.HTTPCookie()
		if base.Scheme != "https" {
			hc.Secure = false
		}
		out = append(out, hc)
	}
	return out
}

func (c *Client) get(ctx context.Context, path string, query url.Values, referer string) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if referer != "" {
		req.SetHeader("Referer", c.http.BaseURL+referer)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("canvas returned %s for %s", resp.Status(), path)
	}
	return resp.Body(), nil
}

func (c *Client) postForm(ctx context.Context, path string, form map[string]string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Referer", c.http.BaseURL+path).
		SetFormData(form).
		Post(path)
	if err != nil {
		return fmt.Errorf("submit %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("canvas returned %s for %s", resp.Status(), path)
	}
	return nil
}

func isLoginPage(body []byte) bool {
	text := string(body)
	return strings.Contains(text, "Login Required") || strings.Contains(strings.ToLower(text), "logged in")
}
