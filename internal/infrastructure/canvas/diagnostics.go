package canvas

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mfluker/aod-dashboard/internal/domain"
)

// Diagnostics dumps raw report responses to disk so an operator can inspect
// what Canvas actually returned. A nil or dir-less Diagnostics writes nothing.
type Diagnostics struct {
	directory string
	logger    *slog.Logger
}

// NewDiagnostics returns nil when dir is empty.
func NewDiagnostics(dir string) *Diagnostics {
	if dir == "" {
		return nil
	}
	return &Diagnostics{directory: dir}
}

// Path is where the artifact for report and week lives.
func (d *Diagnostics) Path(report string, week domain.Week) string {
	if d == nil {
		return ""
	}
	name := report + ".html"
	if !week.IsZero() {
		name = fmt.Sprintf("%s_%s.html", report, week.FileToken())
	}
	return filepath.Join(d.directory, name)
}

// withLogger returns a copy of d that reports write failures to logger.
func (d *Diagnostics) withLogger(logger *slog.Logger) *Diagnostics {
	if d == nil {
		return nil
	}
	return &Diagnostics{directory: d.directory, logger: logger}
}

// Write saves contents and returns the artifact path, or "" on failure.
func (d *Diagnostics) Write(report string, week domain.Week, contents []byte) string {
	if d == nil {
		return ""
	}
	logger := d.logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(d.directory, 0o755); err != nil {
		logger.Warn("failed to create diagnostics dir", "dir", d.directory, "err", err)
		return ""
	}
	path := d.Path(report, week)
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		logger.Warn("failed to write diagnostics file", "path", path, "err", err)
		return ""
	}
	return path
}

// shapeError saves body and wraps cause with the artifact location.
func (c *Client) shapeError(report string, week domain.Week, body []byte, cause error) error {
	path := c.diagnostics.Write(report, week, body)
	if path == "" {
		return fmt.Errorf("%s: %w", report, cause)
	}
	return fmt.Errorf("%s: %w (see %s)", report, cause, path)
}
