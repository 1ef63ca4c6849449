package state

import (
	"math/rand/v2"
	"regexp"
)

const (
	// LocalGameID 单机对局，不同步
	LocalGameID = "local"

	gameIDLength = 6
	gameIDChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	shareableIDPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)
	keyIDPattern       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// NewGameID 生成可分享的随机对局码
func NewGameID() string {
	code := make([]byte, gameIDLength)
	for i := range code {
		code[i] = gameIDChars[rand.IntN(len(gameIDChars))]
	}
	return string(code)
}

// IsShareableID id 是否是 NewGameID 生成的格式
func IsShareableID(id string) bool {
	return shareableIDPattern.MatchString(id)
}

// ValidGameID id 能否作为同步和存储的键
func ValidGameID(id string) bool {
	return keyIDPattern.MatchString(id)
}
