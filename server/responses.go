package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
)

// Message 是错误响应的 JSON 结构。
type Message struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func encodeWriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("写入 JSON 响应失败", "err", err)
	}
}

func writeErrorJSON(w http.ResponseWriter, status int, msg string) {
	encodeWriteJSON(w, status, Message{Type: "error", Message: msg})
}

func writeBytes(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error("写入响应失败", "err", err)
	}
}
