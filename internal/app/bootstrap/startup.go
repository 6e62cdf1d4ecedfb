// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. TaskHub
// uses it to make sure the media upload directory exists.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := os.MkdirAll(appCfg.MediaDir, 0o755); err != nil {
		return fmt.Errorf("create media dir %s: %w", appCfg.MediaDir, err)
	}
	logger.Info("media directory ready", zap.String("dir", appCfg.MediaDir))
	return nil
}
