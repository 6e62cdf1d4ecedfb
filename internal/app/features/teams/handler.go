// internal/app/features/teams/handler.go
package teams

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	teamstore "github.com/taskhub/taskhub/internal/app/store/teams"
)

// Handler is the feature-level entry point for Teams.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a new Teams handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func (h *Handler) store() *teamstore.Store {
	return teamstore.New(h.DB)
}
