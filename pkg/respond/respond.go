package respond

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// Error writes an error payload with a machine-readable kind
// discriminator alongside the human-readable message.
func Error(w http.ResponseWriter, r *http.Request, code int, kind, message string) {
	JSON(w, r, code, errorBody{Kind: kind, Error: message})
}
