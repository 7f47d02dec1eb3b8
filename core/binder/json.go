package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
)

// DefaultMaxJSONSize is the default maximum size for JSON request bodies (1MB).
const DefaultMaxJSONSize = 1 << 20

type jsonConfig struct {
	allowEmpty    bool
	strict        bool
	maxBodyLength int64
}

// JSONOption configures the JSON binder.
type JSONOption func(*jsonConfig)

// AllowEmptyBody makes a request without a body (or with only whitespace)
// bind successfully, leaving v untouched. Content-Type is not required then.
func AllowEmptyBody() JSONOption {
	return func(c *jsonConfig) { c.allowEmpty = true }
}

// DisallowUnknownFields rejects bodies with fields that v does not declare.
func DisallowUnknownFields() JSONOption {
	return func(c *jsonConfig) { c.strict = true }
}

// WithMaxBodySize overrides DefaultMaxJSONSize.
func WithMaxBodySize(n int64) JSONOption {
	return func(c *jsonConfig) {
		if n > 0 {
			c.maxBodyLength = n
		}
	}
}

// JSON creates a JSON body binder.
func JSON(opts ...JSONOption) Binder {
	cfg := jsonConfig{maxBodyLength: DefaultMaxJSONSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(r *http.Request, v any) error {
		if err := r.Context().Err(); err != nil {
			return errors.Join(ErrFailedToParseJSON, err)
		}

		var body []byte
		if r.Body != nil {
			var err error
			body, err = io.ReadAll(io.LimitReader(r.Body, cfg.maxBodyLength+1))
			if err != nil {
				return fmt.Errorf("%w: failed to read request body: %v", ErrFailedToParseJSON, err)
			}
		}
		if int64(len(body)) > cfg.maxBodyLength {
			return fmt.Errorf("%w: request body too large (max %d bytes)", ErrFailedToParseJSON, cfg.maxBodyLength)
		}

		if len(bytes.TrimSpace(body)) == 0 {
			if cfg.allowEmpty {
				return nil
			}
			return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMediaType, contentType)
		}

		decoder := json.NewDecoder(bytes.NewReader(body))
		if cfg.strict {
			decoder.DisallowUnknownFields()
		}
		if err := decoder.Decode(v); err != nil {
			return fmt.Errorf("%w: %v", ErrFailedToParseJSON, err)
		}

		var extra json.RawMessage
		if err := decoder.Decode(&extra); err != io.EOF {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrFailedToParseJSON)
		}

		sanitizeStrings(reflect.ValueOf(v))
		return nil
	}
}

// sanitizeStrings walks v and cleans every settable string.
func sanitizeStrings(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.String:
		if rv.CanSet() {
			rv.SetString(sanitizeStringValue(rv.String()))
		}
	case reflect.Struct:
		for i := range rv.NumField() {
			if field := rv.Field(i); field.CanSet() {
				sanitizeStrings(field)
			}
		}
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			sanitizeStrings(rv.Index(i))
		}
	case reflect.Pointer, reflect.Interface:
		if !rv.IsNil() {
			sanitizeStrings(rv.Elem())
		}
	}
}
