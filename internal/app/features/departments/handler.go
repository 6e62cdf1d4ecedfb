// internal/app/features/departments/handler.go
package departments

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	departmentstore "github.com/taskhub/taskhub/internal/app/store/departments"
)

// Handler is the feature-level entry point for Departments.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

// NewHandler constructs a new Departments handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

func (h *Handler) store() *departmentstore.Store {
	return departmentstore.New(h.DB)
}
