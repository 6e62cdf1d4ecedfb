// internal/domain/models/media.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media is the metadata record for an uploaded file. The bytes themselves
// live with the file-storage collaborator under StorageKey; this record
// follows the same lifecycle as every other entity.
type Media struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"` // original filename
	NameCI      string              `bson:"name_ci" json:"name_ci"`
	StorageKey  string              `bson:"storage_key" json:"storage_key"`
	ContentType string              `bson:"content_type" json:"content_type"`
	Size        int64               `bson:"size" json:"size"`
	OwnerID     *primitive.ObjectID `bson:"owner_id,omitempty" json:"owner_id,omitempty"`

	IsActive  bool       `bson:"is_active" json:"is_active"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at" json:"updated_at"`
	DeletedAt DeletedAt  `bson:"deleted_at" json:"deleted_at"`
}
