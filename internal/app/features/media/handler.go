// internal/app/features/media/handler.go
package media

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	mediastore "github.com/taskhub/taskhub/internal/app/store/media"
)

// maxUploadBytes caps a single upload.
const maxUploadBytes = 32 << 20

// Handler is the feature-level entry point for Media. Dir is the root
// directory uploaded bytes are stored under, keyed by storage key.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
	Dir string
}

// NewHandler constructs a new Media handler bound to a DB, logger, and
// storage directory.
func NewHandler(db *mongo.Database, logger *zap.Logger, dir string) *Handler {
	return &Handler{DB: db, Log: logger, Dir: dir}
}

func (h *Handler) store() *mediastore.Store {
	return mediastore.New(h.DB)
}
