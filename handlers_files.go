package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kidandcat/badiri/internal/blob"
	"github.com/kidandcat/badiri/internal/tracker"
)

const (
	maxUploadSize = 32 << 20 // 32MB
	presignExpiry = 15 * time.Minute
)

func (s *server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}
	back := workspaceURL(formValue(r, "project"))
	ref, err := refFromForm(r, tracker.KindTask)
	if err != nil {
		s.fail(w, r, back, "upload", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		redirectWithFlash(w, r, back, "Choose a file to attach")
		return
	}
	defer file.Close()

	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}
	user := currentSession(r).User
	key := blob.AttachmentKey(time.Now(), header.Filename)
	info, err := s.blobs.Put(r.Context(), key, file, blob.PutOptions{
		ContentType: mime,
		Metadata:    map[string]string{"item": ref.Name, "uploaded-by": user},
	})
	if err != nil {
		s.fail(w, r, back, "error storing attachment", err)
		return
	}

	it, err := s.svc.AddAttachment(r.Context(), ref, key)
	if err != nil {
		if _, derr := s.blobs.Delete(r.Context(), key); derr != nil {
			s.log.Warnw("orphaned attachment", "key", key, "error", derr)
		}
		s.fail(w, r, back, "error recording attachment", err)
		return
	}
	s.log.Infow("attachment stored", "key", key, "size", info.Size, "item", it.Name, "user", user)
	redirectWithFlash(w, r, workspaceURL(it.Project), fmt.Sprintf("Attached %s to %s", header.Filename, it.Name))
}

// handleDownloadAttachment redirects to a presigned URL when the store offers
// one and streams the blob otherwise. Missing keys are 404 on every driver.
func (s *server) handleDownloadAttachment(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !strings.HasPrefix(key, "attachments/") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	if _, err := s.blobs.Head(r.Context(), key); errors.Is(err, blob.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	} else if err != nil {
		s.log.Errorw("attachment lookup failed", "key", key, "error", err)
		http.Error(w, "Something went wrong, please retry.", http.StatusInternalServerError)
		return
	}

	if u, err := s.blobs.PresignURL(r.Context(), key, presignExpiry); err == nil {
		http.Redirect(w, r, u, http.StatusFound)
		return
	} else if !errors.Is(err, blob.ErrUnsupported) {
		s.log.Warnw("presign failed", "key", key, "error", err)
	}

	info, body, err := s.blobs.Get(r.Context(), key)
	if errors.Is(err, blob.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Errorw("attachment read failed", "key", key, "error", err)
		http.Error(w, "Something went wrong, please retry.", http.StatusInternalServerError)
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", blob.DisplayName(key)))
	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, body); err != nil {
		s.log.Warnw("attachment stream interrupted", "key", key, "error", err)
	}
}
