package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/teamcal-dev/teamcal/materialize"
)

// MaterializeCmd persists occurrences of stored recurring rules over the
// configured horizon, once or on the configured cron schedule.
type MaterializeCmd struct {
	Daemon bool `help:"Keep running and refresh on the configured cron schedule."`
}

func (c *MaterializeCmd) Run(cliCtx *Context) error {
	m := materialize.New(cliCtx.Store, cliCtx.Config.HorizonMonths, cliCtx.Logger)

	if err := m.RunOnce(context.Background()); err != nil {
		return err
	}
	if !c.Daemon {
		return nil
	}

	scheduler, err := materialize.NewScheduler(m, cliCtx.Config.MaterializeCron, cliCtx.Logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	cliCtx.Logger.Info("signal received, shutting down", "signal", sig.String())
	return nil
}
