package job

import (
	"context"
	"time"

	"tron-balance-bot/internal/service"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultWarmInterval ticks ahead of the list TTL, so lookups between ticks
// never find an expired copy.
const DefaultWarmInterval = service.AssetListTTL - time.Minute

type AssetIndexer interface {
	Refresh(ctx context.Context) (*service.AssetIndex, error)
}

// AssetWarmer keeps the bulk asset-price list populated so the first
// valuation after an idle period does not pay for the download.
type AssetWarmer struct {
	tracer   trace.Tracer
	logger   *zap.Logger
	assets   AssetIndexer
	interval time.Duration
}

func NewAssetWarmer(tracer trace.Tracer, logger *zap.Logger, assets AssetIndexer, interval time.Duration) *AssetWarmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 || interval >= service.AssetListTTL {
		interval = DefaultWarmInterval
	}
	return &AssetWarmer{tracer: tracer, logger: logger.Named("asset-warmer"), assets: assets, interval: interval}
}

// Start refreshes immediately and then every interval. Blocks until ctx is cancelled.
func (w *AssetWarmer) Start(ctx context.Context) {
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *AssetWarmer) refresh(ctx context.Context) {
	ctx, span := w.tracer.Start(ctx, "asset-warmer.refresh")
	defer span.End()

	idx, err := w.assets.Refresh(ctx)
	if err != nil {
		w.logger.Warn("asset list refresh failed", zap.Error(err))
		return
	}
	w.logger.Debug("asset list warm", zap.Int("keys", idx.Len()))
}
