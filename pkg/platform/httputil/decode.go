package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	dErrors "vaxreg/pkg/domain-errors"
)

// RequestParams collects parameters from the URL query, a form body, or a flat JSON
// object body. Body values take precedence over query values with the same name.
// JSON scalars are rendered as strings so that all three sources look alike.
func RequestParams(r *http.Request) (url.Values, error) {
	params := url.Values{}
	for k, v := range r.URL.Query() {
		params[k] = v
	}
	if r.Body == nil || r.Body == http.NoBody {
		return params, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		body := map[string]any{}
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			if errors.Is(err, io.EOF) {
				return params, nil
			}
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
		}
		for k, v := range body {
			s, ok := scalarString(v)
			if !ok {
				return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("parameter %s must be a scalar", k))
			}
			params.Set(k, s)
		}
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid form body")
		}
		for k, v := range r.PostForm {
			params[k] = v
		}
	}
	return params, nil
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}
