package protocol

// 错误码
const (
	ErrCodeUnknown       = 1000
	ErrCodeInvalidMsg    = 1001
	ErrCodeRateLimit     = 1002 // 速率限制
	ErrCodeInvalidGameID = 2001
	ErrCodeMissingState  = 2002
	ErrCodeGameNotFound  = 2003
	ErrCodeInvalidState  = 2004
	ErrCodeServerFull    = 5001 // 连接数已满
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:       "Unknown error",
	ErrCodeInvalidMsg:    "Invalid message format",
	ErrCodeRateLimit:     "Too many messages",
	ErrCodeInvalidGameID: "Invalid game ID",
	ErrCodeMissingState:  "Game state is required",
	ErrCodeGameNotFound:  "Game not found",
	ErrCodeInvalidState:  "Invalid game state",
	ErrCodeServerFull:    "Server is full",
}
