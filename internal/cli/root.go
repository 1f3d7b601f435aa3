// Package cli implements the teamcal command surface.
package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/teamcal-dev/teamcal/internal/config"
	"github.com/teamcal-dev/teamcal/internal/dateutil"
	"github.com/teamcal-dev/teamcal/storage/sqlite"
)

// Context is passed to every command by kong.
type Context struct {
	Config *config.Config
	Store  *sqlite.Store
	Logger *slog.Logger
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// parseWeekdays accepts comma-separated names ("mon,wed") or indices
// ("1,3", 0=Sunday).
func parseWeekdays(s string) ([]time.Weekday, error) {
	if s == "" {
		return nil, nil
	}
	var out []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if wd, ok := weekdayNames[part]; ok {
			out = append(out, wd)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		out = append(out, time.Weekday(n))
	}
	return out, nil
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDateFlag(name, value string) (dateutil.Date, error) {
	d, err := dateutil.ParseDate(value)
	if err != nil {
		return dateutil.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func parseClockFlag(name, value string) (dateutil.ClockTime, error) {
	c, err := dateutil.ParseClock(value)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", name, err)
	}
	return c, nil
}
