package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid JSON body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a validation failure: {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type serverError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// writeServerError writes {"error": {"message", "status"}}.
func writeServerError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]serverError{"error": {Message: message, Status: status}})
}

// decodeBody decodes a JSON request body into v. An empty body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidBody
	}
	return nil
}

// queryInt parses a positive integer query parameter. Missing, malformed or
// non-positive values yield def; larger values are capped at ceiling.
func queryInt(r *http.Request, key string, def, ceiling int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, ceiling)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeServerError(w, http.StatusNotFound, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeServerError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
