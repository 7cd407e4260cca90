package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/varoonsolanki/datasweeper/internal/sweep"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.sweep.enabled") {
		closer, err := sweep.New(sweep.Dependency{
			Config:    a.config,
			Router:    a.router,
			Goroutine: a.goroutine,
			Context:   a.ctx,
			ID:        a.uuid,
		})
		if err != nil {
			slog.Error("failed to init module sweep", "error", err)
			os.Exit(1)
		}
		if closer != nil {
			if a.closerFn == nil {
				a.closerFn = map[string]func(context.Context) error{}
			}
			a.closerFn["Sweep"] = closer
		}
	}
}
