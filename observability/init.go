package observability

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/streamcast/logger"
)

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(ctx context.Context) error

// Init installs tracer and meter providers from cfg. When cfg is disabled
// nothing is installed and the returned ShutdownFunc does nothing.
func Init(ctx context.Context, cfg Config, r Resource) (ShutdownFunc, error) {
	if !cfg.Enabled {
		logger.Debug("observability disabled")
		return func(context.Context) error { return nil }, nil
	}
	cfg.ApplyDefaults()

	tp, err := InitTracer(ctx, cfg.TracerConfig(r))
	if err != nil {
		return nil, err
	}
	mp, err := InitMeter(ctx, cfg.MeterConfig(r))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return func(ctx context.Context) error {
		return stderrors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx))
	}, nil
}
