package apperrors

import (
	"errors"
	"net/http"

	"github.com/palemoky/paint-n-pass/internal/protocol"
)

// AppError 携带协议错误码的业务错误（中继与 API 共用）
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrInvalidGameID    = &AppError{Code: protocol.ErrCodeInvalidGameID, Message: "Invalid game ID"}
	ErrMissingGameState = &AppError{Code: protocol.ErrCodeMissingState, Message: "Game state is required"}
	ErrGameNotFound     = &AppError{Code: protocol.ErrCodeGameNotFound, Message: "Game not found"}
	ErrInvalidGameState = &AppError{Code: protocol.ErrCodeInvalidState, Message: "Invalid game state"}
	ErrServerFull       = &AppError{Code: protocol.ErrCodeServerFull, Message: "Server is full"}
	ErrInvalidMessage   = &AppError{Code: protocol.ErrCodeInvalidMsg, Message: "Invalid message format"}
	ErrRateLimited      = &AppError{Code: protocol.ErrCodeRateLimit, Message: "Too many messages"}
)

// CodeOf 返回 err 链上第一个 AppError 的错误码，没有则返回 ErrCodeUnknown
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return protocol.ErrCodeUnknown
}

// HTTPStatus 错误码对应的 HTTP 状态码，未知错误按 500 处理
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case protocol.ErrCodeInvalidMsg, protocol.ErrCodeInvalidGameID,
		protocol.ErrCodeMissingState, protocol.ErrCodeInvalidState:
		return http.StatusBadRequest
	case protocol.ErrCodeGameNotFound:
		return http.StatusNotFound
	case protocol.ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case protocol.ErrCodeServerFull:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ToMessage 将错误转换为协议错误消息
func ToMessage(err error) *protocol.Message {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return protocol.NewErrorMessageWithText(appErr.Code, appErr.Message)
	}
	return protocol.NewErrorMessage(protocol.ErrCodeUnknown)
}
