package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mfluker/aod-dashboard/internal/ports"
)

// ErrCookieFileMissing is returned when the exported cookie file does not exist.
var ErrCookieFileMissing = errors.New("cookie file not found")

// Cookie is one entry of a browser cookie export (Cookie-Editor format).
type Cookie struct {
	Name           string   `json:"name"`
	Value          string   `json:"value"`
	Domain         string   `json:"domain,omitempty"`
	Path           string   `json:"path,omitempty"`
	Secure         bool     `json:"secure,omitempty"`
	HTTPOnly       bool     `json:"httpOnly,omitempty"`
	ExpirationDate *float64 `json:"expirationDate,omitempty"`
}

// Expires returns the cookie expiry, if the export carried one.
func (c Cookie) Expires() (time.Time, bool) {
	if c.ExpirationDate == nil {
		return time.Time{}, false
	}
	sec, frac := math.Modf(*c.ExpirationDate)
	return time.Unix(int64(sec), int64(frac*1e9)), true
}

// HTTPCookie converts the export entry for use on a request.
func (c Cookie) HTTPCookie() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
	}
	if exp, ok := c.Expires(); ok {
		hc.Expires = exp
	}
	return hc
}

// LoadCookies reads a JSON array of exported cookies.
func LoadCookies(path string) ([]Cookie, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at: %s", ErrCookieFileMissing, path)
		}
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(raw, &cookies); err != nil {
		return nil, fmt.Errorf("parse cookies: %w", err)
	}
	return cookies, nil
}

// CookieStatus is the verdict on a cookie file.
type CookieStatus = ports.CredentialStatus

// ValidateCookies checks that the export exists, is a non-empty array, carries
// every required cookie and that nothing in it has expired as of now.
func ValidateCookies(path string, required []string, now time.Time) CookieStatus {
	cookies, err := LoadCookies(path)
	if err != nil {
		if errors.Is(err, ErrCookieFileMissing) {
			return CookieStatus{Reason: fmt.Sprintf("Cookie file not found at: %s", path)}
		}
		return CookieStatus{Reason: fmt.Sprintf("Error reading cookies: %v", err)}
	}
	return ValidateCookieSet(cookies, required, now)
}

// ValidateCookieSet applies the same checks as ValidateCookies to parsed cookies.
func ValidateCookieSet(cookies []Cookie, required []string, now time.Time) CookieStatus {
	if len(cookies) == 0 {
		return CookieStatus{Reason: "Cookie file is empty"}
	}

	present := make(map[string]bool, len(cookies))
	for _, c := range cookies {
		if c.Value != "" {
			present[c.Name] = true
		}
	}
	var missing []string
	for _, name := range required {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return CookieStatus{Reason: fmt.Sprintf("Missing required cookies: %s", strings.Join(missing, ", "))}
	}

	var (
		expired []string
		soonest time.Time
	)
	for _, c := range cookies {
		exp, ok := c.Expires()
		if !ok {
			continue
		}
		if exp.Before(now) {
			expired = append(expired, fmt.Sprintf("%s (expired %s)", c.Name, exp.Format("2006-01-02 15:04")))
			continue
		}
		if soonest.IsZero() || exp.Before(soonest) {
			soonest = exp
		}
	}
	if len(expired) > 0 {
		return CookieStatus{Reason: fmt.Sprintf("Expired cookies: %s", strings.Join(expired, ", "))}
	}

	return CookieStatus{Valid: true, Reason: "Cookies are valid", Expires: soonest}
}

// Checker implements ports.CredentialChecker against a cookie file on disk.
type Checker struct {
	Path     string
	Required []string
}

var _ ports.CredentialChecker = Checker{}

// Check re-reads the file on every call so a refreshed export is picked up.
func (c Checker) Check(now time.Time) ports.CredentialStatus {
	return ValidateCookies(c.Path, c.Required, now)
}
