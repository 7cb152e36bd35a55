package route

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"vobject/src-server/utils"
)

// Limit the request body to MAX_BODY_BYTES and log every request
func Middleware(as *utils.AppState, next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		r.Body = http.MaxBytesReader(w, r.Body, as.Config.GetMaxBodyBytes())
		next(w, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(startTimer))
	}
}

// Read the whole body. On failure the response is already written.
func readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			w.Write([]byte("Request body is too large"))
			return "", false
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Can't read request body"))
		return "", false
	}
	return string(body), true
}

// Media type of a serialized root component
func contentType(rootTag string) string {
	switch strings.ToUpper(rootTag) {
	case "VCARD":
		return "text/vcard; charset=utf-8"
	case "VCALENDAR":
		return "text/calendar; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
