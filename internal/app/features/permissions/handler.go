// internal/app/features/permissions/handler.go
package permissions

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	permissionstore "github.com/taskhub/taskhub/internal/app/store/permissions"
)

// Handler is the feature-level entry point for Permissions.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a new Permissions handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func (h *Handler) store() *permissionstore.Store {
	return permissionstore.New(h.DB)
}
