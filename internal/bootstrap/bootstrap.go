package bootstrap

import (
	"context"
	"log/slog"

	"github.com/GregMSThompson/dashboard-engine/internal/cache"
	"github.com/GregMSThompson/dashboard-engine/internal/config"
	"github.com/GregMSThompson/dashboard-engine/internal/gateway"
	"github.com/GregMSThompson/dashboard-engine/pkg/logger"
)

// Bootstrap holds the process-wide resources the engine is wired from.
type Bootstrap struct {
	Log     *slog.Logger
	Gateway *gateway.Client
	Mirror  *cache.Mirror // nil when the mirror could not be opened
}

// Run initializes logging, the preference gateway client, and the local
// mirror. A mirror failure degrades the engine (no stale hydration, no
// offline copy) but never blocks startup.
func Run(cfg *config.Config) (*Bootstrap, error) {
	log := logger.New(cfg.LogLevel)
	bs := &Bootstrap{Log: log}

	gw, err := gateway.NewClient(cfg.GatewayURL)
	if err != nil {
		return bs, err
	}
	bs.Gateway = gw

	mirror, err := cache.Open(context.Background(), cfg.MirrorPath)
	if err != nil {
		log.Warn("preference mirror unavailable", "path", cfg.MirrorPath, "error", err)
	} else {
		bs.Mirror = mirror
	}

	return bs, nil
}

func (b *Bootstrap) Close() {
	if b.Mirror != nil {
		if err := b.Mirror.Close(); err != nil {
			b.Log.Warn("failed to close preference mirror", "error", err)
		}
	}
}
