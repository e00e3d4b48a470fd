package handler

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/mfgops/backend/internal/interfaces/http/dto"
)

// uploadField is the multipart field every upload endpoint reads
const uploadField = "file"

type upload struct {
	file        multipart.File
	fileName    string
	contentType string
	size        int64
}

// readUpload opens the "file" part of a multipart request. A missing or
// generic content type is sniffed from the first bytes. The caller closes
// the returned file.
func (h *BaseHandler) readUpload(c *gin.Context) (*upload, bool) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.HandleError(c, err)
			return nil, false
		}
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "A file is required in the \"file\" field")
		return nil, false
	}
	f, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}

	contentType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		buf := make([]byte, 512)
		n, _ := io.ReadFull(f, buf)
		contentType, _, _ = mime.ParseMediaType(http.DetectContentType(buf[:n]))
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			_ = f.Close()
			h.HandleError(c, err)
			return nil, false
		}
	}

	return &upload{
		file:        f,
		fileName:    filepath.Base(header.Filename),
		contentType: contentType,
		size:        header.Size,
	}, true
}
