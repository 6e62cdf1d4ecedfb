// internal/app/features/features/handler.go
package features

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	featurestore "github.com/taskhub/taskhub/internal/app/store/features"
)

// Handler is the feature-level entry point for Features.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a new Features handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func (h *Handler) store() *featurestore.Store {
	return featurestore.New(h.DB)
}
