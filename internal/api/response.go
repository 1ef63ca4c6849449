package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/palemoky/paint-n-pass/internal/apperrors"
	"github.com/palemoky/paint-n-pass/internal/logger"
)

// Response 统一响应结构
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// 不属于业务错误的响应消息
const (
	MsgMethodNotAllowed = "Method not allowed"
	MsgServerError      = "Internal server error"
)

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("failed to encode response: %v", err)
	}
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Success: false, Error: msg})
}

// writeAppError 按错误码映射状态码；非业务错误只返回通用消息，不暴露内部细节
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		writeError(w, http.StatusInternalServerError, MsgServerError)
		return
	}
	writeError(w, apperrors.HTTPStatus(appErr), appErr.Message)
}
