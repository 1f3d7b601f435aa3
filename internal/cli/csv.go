package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/teamcal-dev/teamcal/cache"
	"github.com/teamcal-dev/teamcal/calendar"
	"github.com/teamcal-dev/teamcal/csvio"
	"github.com/teamcal-dev/teamcal/event"
)

// ImportCmd loads occurrences from a CSV file into storage.
type ImportCmd struct {
	File string `arg:"" help:"CSV file to import." type:"existingfile"`
}

func (c *ImportCmd) Run(cliCtx *Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer f.Close()

	occurrences, rowErrs, err := csvio.Import(f)
	if err != nil {
		return err
	}
	for _, re := range rowErrs {
		cliCtx.Logger.Warn("skipped CSV row", "line", re.Line, "error", re.Err)
	}

	result, err := cliCtx.Store.PutEvents(context.Background(), occurrences)
	if err != nil {
		return err
	}
	for _, item := range result.Failed() {
		cliCtx.Logger.Warn("failed to store imported event", "id", item.ID, "error", item.Err)
	}

	fmt.Printf("imported %d event(s), skipped %d row(s), %d write failure(s)\n",
		len(occurrences)-len(result.Failed()), len(rowErrs), len(result.Failed()))
	return nil
}

// ExportCmd writes the calendar window (materialized plus virtual
// occurrences) as CSV.
type ExportCmd struct {
	From   string `help:"Window start (YYYY-MM-DD)." required:""`
	To     string `help:"Window end (YYYY-MM-DD)." required:""`
	Output string `help:"Output file; stdout when omitted." short:"o"`
}

func (c *ExportCmd) Run(cliCtx *Context) error {
	from, err := parseDateFlag("from", c.From)
	if err != nil {
		return err
	}
	to, err := parseDateFlag("to", c.To)
	if err != nil {
		return err
	}

	svc := calendar.NewService(cliCtx.Store, cache.New[[]event.Occurrence](0),
		time.Duration(cliCtx.Config.CacheTTLMinutes)*time.Minute, cliCtx.Logger)
	occurrences, err := svc.EventsInWindow(context.Background(), from, to)
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
	return csvio.Export(out, occurrences)
}
