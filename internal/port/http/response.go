package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope wraps every API response.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Errors     []string    `json:"errors"`
	StatusCode int         `json:"statusCode"`
	Timestamp  time.Time   `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	env.StatusCode = status
	env.Timestamp = time.Now().UTC()
	if env.Errors == nil {
		env.Errors = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func respondOK(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string, errs ...string) {
	writeJSON(w, status, Envelope{Success: false, Message: message, Errors: errs})
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}
