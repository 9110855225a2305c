// Package cli contains the cobra subcommands for the tide binary.
package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/wire"
)

// services resolves the shared container and the configured user id.
// Every command is scoped to the configured user.
func services() (*wire.Container, string, error) {
	c, err := wire.Services()
	if err != nil {
		return nil, "", err
	}
	if c.Config.UserID == "" {
		return nil, "", fmt.Errorf("config has no user_id - re-run 'tide init'")
	}
	return c, c.Config.UserID, nil
}

// parseDate parses a YYYY-MM-DD argument, returning the zero time for
// an empty string so callers fall back to "now".
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// timezone returns the explicit flag value when set, otherwise the
// configured timezone.
func timezone(flag string, c *wire.Container) string {
	if flag != "" {
		return flag
	}
	return c.Config.Timezone
}

func statusColored(status string) string {
	switch status {
	case models.TideStatusActive:
		return color.New(color.FgGreen).Sprint(status)
	case models.TideStatusPaused:
		return color.New(color.FgYellow).Sprint(status)
	case models.TideStatusCompleted:
		return color.New(color.FgBlue).Sprint(status)
	}
	return status
}
