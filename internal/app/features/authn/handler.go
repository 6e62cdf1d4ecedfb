// internal/app/features/authn/handler.go
package authn

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/taskhub/taskhub/internal/app/store/users"
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/credentials"
)

// Handler is the feature-level entry point for sign-in, sign-out, and
// invite-based registration.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
	SM  *auth.SessionManager
	Box *credentials.Box
}

// NewHandler constructs an auth handler bound to a DB, logger, session
// manager, and secret box.
func NewHandler(db *mongo.Database, logger *zap.Logger, sm *auth.SessionManager, box *credentials.Box) *Handler {
	return &Handler{DB: db, Log: logger, SM: sm, Box: box}
}

func (h *Handler) users() *userstore.Store {
	return userstore.New(h.DB)
}
