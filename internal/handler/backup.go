package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/chime/internal/backup"
	"github.com/dukerupert/chime/internal/store"
)

type BackupHandler struct {
	manager     *backup.Manager
	backupStore *store.BackupStore
	logger      *slog.Logger
}

func NewBackupHandler(m *backup.Manager, bs *store.BackupStore, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, backupStore: bs, logger: logger}
}

// Status handles GET /api/backup/status
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// History handles GET /api/backup/history
func (h *BackupHandler) History(w http.ResponseWriter, r *http.Request) {
	backups, err := h.backupStore.List(20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	if backups == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, backups)
}

// RunNow handles POST /api/backup/now
func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	id, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("manual backup", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"backup_id": id})
}

// Restore handles POST /api/backup/{id}/restore. On success the process
// exits and the supervisor restarts on the restored database.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.manager.Restore(r.Context(), id); err != nil {
		h.logger.Error("restore backup", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
}

// Download handles GET /api/backup/{id}/download, streaming the
// encrypted archive.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	body, size, err := h.manager.Download(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"backup-%d.db.enc\"", id))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	io.Copy(w, body)
}
