package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mfluker/aod-dashboard/internal/infrastructure/canvas"
	"github.com/mfluker/aod-dashboard/pkg/console"
)

func newCookiesCommand(e *env) *cobra.Command {
	cookies := &cobra.Command{
		Use:   "cookies",
		Short: "Inspect the exported Canvas session",
	}
	cookies.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the cookie file before running a backfill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := e.cfg.Canvas.CookieFile
			status := canvas.ValidateCookies(path, e.cfg.Canvas.RequiredCookies, time.Now())
			if status.Valid {
				e.printer.Success("%s", status.Reason)
				if !status.Expires.IsZero() {
					e.printer.Print("Earliest expiry: %s", status.Expires.Local().Format(time.RFC1123))
				}
				return nil
			}
			e.printer.Error("Invalid or expired cookies: %s", status.Reason)
			printRefreshSteps(e.printer, path)
			return errInvalidCookies
		},
	})
	return cookies
}

func printRefreshSteps(p *console.Printer, path string) {
	p.Header("To refresh your cookies")
	p.Print("1. Log into Canvas in your browser")
	p.Print("2. Export the cookies for the Canvas domain as JSON")
	p.Print("3. Save them to %s", path)
	p.Print("4. Run 'weeklyops cookies check' again")
}
