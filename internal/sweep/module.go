package sweep

import (
	"context"
	"time"

	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgconfig"
	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgrouter"
	"github.com/varoonsolanki/datasweeper/internal/pkg/pkgroutine"
	"github.com/varoonsolanki/datasweeper/internal/pkg/pkguid"
	"github.com/varoonsolanki/datasweeper/internal/sweep/event"
	"github.com/varoonsolanki/datasweeper/internal/sweep/inbound"
	"github.com/varoonsolanki/datasweeper/internal/sweep/store"
	"github.com/varoonsolanki/datasweeper/internal/sweep/usecase"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
}

func New(dep Dependency) (func(context.Context) error, error) {
	storage := store.NewInMemoryStore()

	bus := event.NewBus(256)
	consumer := event.NewHistoryConsumer(bus, event.Recorder{Store: storage}, event.ConsumerConfig{
		Workers:     int(dep.Config.GetInt("modules.sweep.consumer.workers")),
		MaxRetries:  int(dep.Config.GetInt("modules.sweep.consumer.max_retries")),
		BaseBackoff: time.Duration(dep.Config.GetInt("modules.sweep.consumer.base_backoff_ms")) * time.Millisecond,
	})
	consumer.Start()

	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}

	uc := usecase.New(usecase.Dependency{
		Store:  storage,
		Events: bus,
		Runner: dep.Goroutine,
		ID:     dep.ID,
		Limits: usecase.Limits{
			MaxUploadBytes: dep.Config.GetInt("modules.sweep.max_upload_bytes"),
			PreviewRows:    int(dep.Config.GetInt("modules.sweep.preview_rows")),
			MaxPreviewRows: int(dep.Config.GetInt("modules.sweep.max_preview_rows")),
			MaxChartRows:   int(dep.Config.GetInt("modules.sweep.max_chart_rows")),
		},
		RootCtx: dep.Context,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return consumer.Stop, nil
}
