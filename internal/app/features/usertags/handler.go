// internal/app/features/usertags/handler.go
package usertags

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	usertagstore "github.com/taskhub/taskhub/internal/app/store/usertags"
)

// Handler is the feature-level entry point for UserTags.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a new UserTags handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func (h *Handler) store() *usertagstore.Store {
	return usertagstore.New(h.DB)
}
