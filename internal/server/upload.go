package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// allowedUploadExts is the extension allow-list for symptom images.
var allowedUploadExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// saveUpload stores an uploaded image under the upload directory with a
// uuid-prefixed, sanitized filename and returns that filename.
func (s *Server) saveUpload(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		return "", echo.NewHTTPError(http.StatusBadRequest,
			"uploaded file type not allowed (png/jpg/jpeg/gif)")
	}

	if err := os.MkdirAll(s.config.UploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + "_" + sanitizeFilename(file.Filename)
	dst := filepath.Join(s.config.UploadDir, name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return name, nil
}

// sanitizeFilename strips path components and anything outside a safe
// character set so client-supplied names cannot escape the upload dir.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := b.String()
	if out == "" || strings.Trim(out, "._") == "" {
		out = "upload" + strings.ToLower(filepath.Ext(name))
	}
	return out
}
