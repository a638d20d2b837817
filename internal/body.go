package internal

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
)

// maxBodySize caps parsed request bodies at 10 MiB.
const maxBodySize = 10 << 20

// parseBody reads the request body into a generic map. JSON objects map
// directly; form posts map field names to their values, with single-value
// fields flattened to strings. Anything unparsable yields an empty map so
// validation reports missing fields instead of the request erroring out.
func parseBody(r *http.Request, log *slog.Logger) map[string]any {
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return map[string]any{}
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return map[string]any{}
	}

	switch mediaType {
	case "application/json":
		var body map[string]any
		dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
		if err := dec.Decode(&body); err != nil {
			log.Debug("body parse failed", slog.Any("error", err))
			return map[string]any{}
		}
		return body

	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
		if err := r.ParseForm(); err != nil {
			log.Debug("form parse failed", slog.Any("error", err))
			return map[string]any{}
		}
		return flattenForm(r.PostForm)

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodySize); err != nil {
			log.Debug("multipart parse failed", slog.Any("error", err))
			return map[string]any{}
		}
		return flattenForm(r.MultipartForm.Value)

	default:
		return map[string]any{}
	}
}

func flattenForm(values map[string][]string) map[string]any {
	body := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			body[key] = vals[0]
		} else {
			body[key] = vals
		}
	}
	return body
}
