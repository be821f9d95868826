package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/caxtonapp/push-relay-go/internal/errors"
)

// parseBody reads the request body as either JSON or a URL-encoded form.
// The phone apps and pairing sites historically post forms; newer clients
// post JSON. An absent or empty body parses to empty values so that field
// validation produces the missing-field errors, not a parse error.
func parseBody(r *http.Request) (url.Values, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		return parseJSONBody(r)
	}

	if err := r.ParseForm(); err != nil {
		return nil, apperrors.ValidationError("Invalid request body").WithCause(err)
	}
	return r.PostForm, nil
}

func parseJSONBody(r *http.Request) (url.Values, error) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, apperrors.ValidationError("Invalid request body").WithCause(err)
	}

	values := url.Values{}
	for key, value := range fields {
		switch v := value.(type) {
		case string:
			values.Set(key, v)
		case float64:
			values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			values.Set(key, fmt.Sprintf("%t", v))
		}
	}
	return values, nil
}
