package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/folio-labs/portfolio-api/internal/apperr"
)

const ctxUpload = "upload"

// UploadedFile is an accepted upload buffered in memory.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SingleImage accepts at most one file in field. The file must not exceed
// maxBytes and must be an image both by its declared type and by its
// content. Requests without the file pass through untouched.
func SingleImage(field string, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
			c.Next()
			return
		}

		fh, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			c.Next()
			return
		}
		if err != nil {
			_ = c.Error(apperr.Validation("invalid file upload", apperr.FieldError{Field: field, Message: "unreadable file"}))
			c.Abort()
			return
		}
		if files := c.Request.MultipartForm.File[field]; len(files) > 1 {
			_ = c.Error(apperr.Validation("only one file is allowed", apperr.FieldError{Field: field, Message: "only one file is allowed"}))
			c.Abort()
			return
		}

		tooBig := apperr.TooLarge(fmt.Sprintf("file exceeds the %s limit", humanize.IBytes(uint64(maxBytes))))
		if fh.Size > maxBytes {
			_ = c.Error(tooBig)
			c.Abort()
			return
		}

		declared := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(declared, "image/") {
			_ = c.Error(notAnImage(field))
			c.Abort()
			return
		}

		f, err := fh.Open()
		if err != nil {
			_ = c.Error(apperr.Internal("", err))
			c.Abort()
			return
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
		if err != nil {
			_ = c.Error(apperr.Internal("", err))
			c.Abort()
			return
		}
		if int64(len(data)) > maxBytes {
			_ = c.Error(tooBig)
			c.Abort()
			return
		}

		sniffed := mimetype.Detect(data)
		if !strings.HasPrefix(sniffed.String(), "image/") {
			_ = c.Error(notAnImage(field))
			c.Abort()
			return
		}

		c.Set(ctxUpload, &UploadedFile{
			Filename:    fh.Filename,
			ContentType: sniffed.String(),
			Data:        data,
		})
		c.Next()
	}
}

// FileFrom returns the upload accepted by SingleImage, or nil.
func FileFrom(c *gin.Context) *UploadedFile {
	v, ok := c.Get(ctxUpload)
	if !ok {
		return nil
	}
	f, _ := v.(*UploadedFile)
	return f
}

func notAnImage(field string) *apperr.Error {
	return apperr.Validation("only image files are allowed", apperr.FieldError{Field: field, Message: "the file must be an image"})
}
