// internal/app/features/projects/handler.go
package projects

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	projectstore "github.com/taskhub/taskhub/internal/app/store/projects"
)

// Handler is the feature-level entry point for Projects.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a new Projects handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func (h *Handler) store() *projectstore.Store {
	return projectstore.New(h.DB)
}
