package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/folio-labs/portfolio-api/config"
	"github.com/folio-labs/portfolio-api/internal/apperr"
	"github.com/folio-labs/portfolio-api/internal/security"
)

// multipartMemory is the in-memory budget for parsed multipart forms; larger
// parts spill to temporary files.
const multipartMemory = 32 << 20

// Suspicious-request warnings are capped so a scan cannot flood the log.
const (
	suspiciousLogEvery = time.Second
	suspiciousLogBurst = 20
)

// repeatableParams may legitimately appear more than once in a query string.
var repeatableParams = map[string]bool{"sort": true, "fields": true, "page": true, "limit": true}

// Sanitize cleans every string in the body, the query and the path params and
// rejects the request on the first value that fails inspection. Outside
// production, rejected fields and suspicious requests are logged without
// their values.
func Sanitize(env string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	verbose := env != config.EnvProduction
	logLimit := rate.NewLimiter(rate.Every(suspiciousLogEvery), suspiciousLogBurst)

	return func(c *gin.Context) {
		if verbose {
			if source, pattern, ok := suspicious(c); ok && logLimit.Allow() {
				logger.Warn("suspicious request",
					zap.String("source", source),
					zap.String("pattern", pattern),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("ip", c.ClientIP()))
			}
		}

		err := sanitizeQuery(c)
		if err == nil {
			err = sanitizeParams(c)
		}
		if err == nil {
			err = sanitizeBody(c)
		}
		if err != nil {
			if verbose {
				var fields []string
				if ae := apperr.Translate(err); ae != nil {
					for _, d := range ae.Details {
						fields = append(fields, d.Field)
					}
				}
				logger.Warn("rejected request input", zap.Strings("fields", fields), zap.String("ip", c.ClientIP()))
			}
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// suspicious looks for security-logger patterns in the request URI, the
// User-Agent and text bodies. The body is read and put back untouched.
// Multipart bodies are skipped because file parts are binary.
func suspicious(c *gin.Context) (source, pattern string, ok bool) {
	if pattern, ok := security.Suspicious(c.Request.RequestURI); ok {
		return "uri", pattern, true
	}
	if pattern, ok := security.Suspicious(c.Request.UserAgent()); ok {
		return "user-agent", pattern, true
	}

	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return "", "", false
	}
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType != gin.MIMEJSON && mediaType != gin.MIMEPOSTForm {
		return "", "", false
	}
	raw, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = readCloser{io.MultiReader(bytes.NewReader(raw), c.Request.Body), c.Request.Body}
	if pattern, ok := security.Suspicious(string(raw)); ok {
		return "body", pattern, true
	}
	return "", "", false
}

// readCloser replays a peeked body while closing the original one.
type readCloser struct {
	io.Reader
	io.Closer
}

// sanitizeQuery collapses duplicated parameters to their last value, except
// the repeatable ones, before cleaning them.
func sanitizeQuery(c *gin.Context) error {
	if c.Request.URL.RawQuery == "" {
		return nil
	}
	q, err := url.ParseQuery(c.Request.URL.RawQuery)
	if err != nil {
		return apperr.Validation("invalid input data", apperr.FieldError{Field: "query", Message: "malformed query string"})
	}
	for k, vs := range q {
		if len(vs) > 1 && !repeatableParams[k] {
			q[k] = vs[len(vs)-1:]
		}
	}
	if err := security.ScrubValues(q); err != nil {
		return err
	}
	c.Request.URL.RawQuery = q.Encode()
	return nil
}

func sanitizeParams(c *gin.Context) error {
	for i, p := range c.Params {
		cleaned := security.Clean(p.Value)
		if err := security.Inspect(p.Key, cleaned); err != nil {
			return err
		}
		c.Params[i].Value = cleaned
	}
	return nil
}

func sanitizeBody(c *gin.Context) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))

	switch mediaType {
	case gin.MIMEJSON:
		return sanitizeJSON(c)
	case gin.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return formError(err, c)
		}
		if err := security.ScrubValues(c.Request.PostForm); err != nil {
			return err
		}
		return security.ScrubValues(c.Request.Form)
	case gin.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
			return formError(err, c)
		}
		if err := security.ScrubValues(c.Request.MultipartForm.Value); err != nil {
			return err
		}
		if err := security.ScrubValues(c.Request.PostForm); err != nil {
			return err
		}
		return security.ScrubValues(c.Request.Form)
	}
	return nil
}

func sanitizeJSON(c *gin.Context) error {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if isTooLarge(err) {
			return tooLargeFrom(err)
		}
		return apperr.Validation("invalid input data", apperr.FieldError{Field: "body", Message: "unreadable request body"})
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return apperr.Validation("invalid input data", apperr.FieldError{Field: "body", Message: "malformed JSON body"})
	}

	cleaned, err := security.Scrub("", v)
	if err != nil {
		return err
	}
	out, err := json.Marshal(cleaned)
	if err != nil {
		return apperr.Internal("", err)
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(out))
	c.Request.ContentLength = int64(len(out))
	return nil
}

func formError(err error, c *gin.Context) error {
	if isTooLarge(err) {
		return tooLargeFrom(err)
	}
	return apperr.Validation("invalid input data", apperr.FieldError{Field: "body", Message: "malformed form body"})
}

// QueryAllowlist drops query parameters outside the record store's query
// vocabulary. Parameters starting with "_" are always kept.
func QueryAllowlist(env string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	verbose := env != config.EnvProduction
	allowed := map[string]bool{}
	for _, k := range strings.Fields("select order limit offset range eq neq gt gte lt lte like ilike is in contains contained_by overlap") {
		allowed[k] = true
	}

	return func(c *gin.Context) {
		if c.Request.URL.RawQuery == "" {
			c.Next()
			return
		}
		q := c.Request.URL.Query()
		var dropped []string
		for k := range q {
			if !allowed[k] && !strings.HasPrefix(k, "_") {
				dropped = append(dropped, k)
				delete(q, k)
			}
		}
		if len(dropped) > 0 {
			if verbose {
				logger.Warn("dropped query parameters", zap.Strings("params", dropped), zap.String("ip", c.ClientIP()))
			}
			c.Request.URL.RawQuery = q.Encode()
		}
		c.Next()
	}
}
