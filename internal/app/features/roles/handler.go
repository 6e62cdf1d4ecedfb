// internal/app/features/roles/handler.go
package roles

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	rolestore "github.com/taskhub/taskhub/internal/app/store/roles"
)

// Handler is the feature-level entry point for Roles.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a new Roles handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func (h *Handler) store() *rolestore.Store {
	return rolestore.New(h.DB)
}
