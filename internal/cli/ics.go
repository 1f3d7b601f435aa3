package cli

import (
	"context"
	"os"

	"github.com/teamcal-dev/teamcal/event"
)

// IcsCmd exports stored recurring templates as an iCalendar file.
type IcsCmd struct {
	Output string `help:"Output file; stdout when omitted." short:"o"`
}

func (c *IcsCmd) Run(cliCtx *Context) error {
	templates, err := cliCtx.Store.RecurringTemplates(context.Background())
	if err != nil {
		return err
	}

	out := os.Stdout
	if c.Output != "" {
		out, err = os.Create(c.Output)
		if err != nil {
			return err
		}
		defer out.Close()
	}
	return event.WriteICS(out, templates)
}
