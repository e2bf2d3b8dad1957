// Package objects stores uploaded project images in a bucket and hands back
// their public URLs.
package objects

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrForeignObject is returned when asked to delete a URL the store did not
// issue, such as an external imageSrc supplied by a client.
var ErrForeignObject = errors.New("object is not managed by this store")

// Store is the object storage contract used by the upload orchestrator.
type Store interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

const maxNameLength = 100

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// NewKey builds a collision-resistant object key of the form
// <prefix>/<unix millis>-<8 hex chars>-<sanitized original name>.
func NewKey(prefix, originalName string, now time.Time) string {
	name := unsafeName.ReplaceAllString(strings.TrimSpace(originalName), "-")
	name = strings.Trim(name, "-.")
	if len(name) > maxNameLength {
		name = name[len(name)-maxNameLength:]
	}
	if name == "" {
		name = "image"
	}

	key := fmt.Sprintf("%d-%s-%s", now.UnixMilli(), uuid.NewString()[:8], name)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

// urlBase maps keys to public URLs under a fixed base and back.
type urlBase string

func newURLBase(base string) urlBase {
	return urlBase(strings.TrimRight(base, "/") + "/")
}

func (b urlBase) url(key string) string {
	return string(b) + key
}

func (b urlBase) key(publicURL string) (string, error) {
	key, ok := strings.CutPrefix(publicURL, string(b))
	if !ok || key == "" {
		return "", ErrForeignObject
	}
	return key, nil
}
