package api

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Data any    `json:"data,omitempty"`
	Meta any    `json:"meta,omitempty"`
	Err  string `json:"error,omitempty"`
}

func SuccessJSON(w http.ResponseWriter, data any, meta any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(Response{
		Data: data,
		Meta: meta,
	})
}

func ErrorJSON(w http.ResponseWriter, status int, err error, msg string) {
	if msg == "" && err != nil {
		msg = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Err: msg,
	})
}
