// internal/app/features/media/actions.go
package media

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"

	"github.com/taskhub/taskhub/internal/app/features/shared"
	mediastore "github.com/taskhub/taskhub/internal/app/store/media"
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/inputval"
	"github.com/taskhub/taskhub/internal/app/system/respond"
)

func (h *Handler) diskPath(storageKey string) string {
	return filepath.Join(h.Dir, storageKey)
}

// HandleUpload accepts a multipart upload under the "file" field, stores
// the bytes under a fresh storage key, and records the metadata. The
// session actor becomes the owner.
//
// Route: POST /media
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid multipart upload", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "missing file field", err)
		return
	}
	defer file.Close()

	name, err := inputval.RequireName(header.Filename)
	if err != nil {
		shared.WriteError(w, h.Log, "upload media", err)
		return
	}

	rec, err := h.store().Create(r.Context(), mediastore.NewMedia{
		Name:        name,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		OwnerID:     auth.ActorID(r),
	})
	if errors.Is(err, mediastore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "media name already in use", err)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "upload media", err)
		return
	}

	if err := h.writeFile(rec.StorageKey, file); err != nil {
		// Roll back the metadata so no record points at missing bytes.
		if remErr := h.store().Remove(r.Context(), rec.ID); remErr != nil {
			h.Log.Warn("orphaned media record after failed write",
				zap.String("media_id", rec.ID.Hex()), zap.Error(remErr))
		}
		respond.Internal(w, h.Log, "upload media", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "media uploaded", rec)
}

func (h *Handler) writeFile(storageKey string, src io.Reader) error {
	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return err
	}
	dst, err := os.Create(h.diskPath(storageKey))
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}

// HandleList returns media records. ?active=true narrows to active ones;
// ?owner=<id> narrows to one owner.
//
// Route: GET /media
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	if ownerHex := query.Get(r, "owner"); ownerHex != "" {
		ownerID, err := inputval.ParseOptionalID(ownerHex)
		if err != nil {
			shared.WriteError(w, h.Log, "list media", err)
			return
		}
		list, err := h.store().ListByOwner(r.Context(), ownerID)
		if err != nil {
			respond.Internal(w, h.Log, "list media", err)
			return
		}
		respond.JSON(w, http.StatusOK, "media fetched", list)
		return
	}

	list, err := h.store().List(r.Context(), query.Get(r, "active") == "true")
	if err != nil {
		respond.Internal(w, h.Log, "list media", err)
		return
	}
	respond.JSON(w, http.StatusOK, "media fetched", list)
}

// HandleGet returns one media record's metadata.
//
// Route: GET /media/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "get media", err)
		return
	}
	rec, err := h.store().GetByID(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.Log, "get media", err)
		return
	}
	respond.JSON(w, http.StatusOK, "media fetched", rec)
}

// HandleDownload streams the stored bytes. Soft-deleted records do not
// serve content.
//
// Route: GET /media/{id}/content
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "download media", err)
		return
	}
	rec, err := h.store().GetByID(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.Log, "download media", err)
		return
	}
	if rec.DeletedAt.IsDeleted() {
		respond.Fail(w, http.StatusNotFound, "record not found", "media record is deleted")
		return
	}

	f, err := os.Open(h.diskPath(rec.StorageKey))
	if err != nil {
		respond.Internal(w, h.Log, "download media", err)
		return
	}
	defer f.Close()

	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.Name+`"`)
	http.ServeContent(w, r, rec.Name, rec.CreatedAt, f)
}

// HandleRename mutates the display name; the storage key never changes.
//
// Route: PUT /media/{id}
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "rename media", err)
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.Fail(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	name, err := inputval.RequireName(in.Name)
	if err != nil {
		shared.WriteError(w, h.Log, "rename media", err)
		return
	}

	st := h.store()
	if err := st.Lifecycle().CheckUpdatable(r.Context(), id); err != nil {
		shared.WriteError(w, h.Log, "rename media", err)
		return
	}
	err = st.Rename(r.Context(), id, name)
	if errors.Is(err, mediastore.ErrDuplicateName) {
		respond.Fail(w, http.StatusConflict, "media name already in use", err)
		return
	}
	if err != nil {
		shared.WriteError(w, h.Log, "rename media", err)
		return
	}
	respond.JSON(w, http.StatusOK, "media renamed", true)
}

// HandlePurge permanently removes a soft-deleted record and its bytes.
//
// Route: DELETE /media/{id}/purge
func (h *Handler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, h.Log, "purge media", err)
		return
	}

	st := h.store()
	rec, err := st.GetByID(r.Context(), id)
	if err != nil {
		shared.WriteError(w, h.Log, "purge media", err)
		return
	}
	if err := st.Lifecycle().Purge(r.Context(), id); err != nil {
		shared.WriteError(w, h.Log, "purge media", err)
		return
	}
	if err := os.Remove(h.diskPath(rec.StorageKey)); err != nil && !os.IsNotExist(err) {
		h.Log.Warn("failed to remove media bytes",
			zap.String("storage_key", rec.StorageKey), zap.Error(err))
	}
	respond.JSON(w, http.StatusOK, "media record permanently deleted", true)
}
