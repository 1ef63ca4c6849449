package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/palemoky/paint-n-pass/internal/apperrors"
	"github.com/palemoky/paint-n-pass/internal/game/state"
	"github.com/palemoky/paint-n-pass/internal/logger"
	"github.com/palemoky/paint-n-pass/internal/storage"
)

// maxBodyBytes 提交快照的大小上限
const maxBodyBytes = 4 << 20

// HandleGetGame 返回 {id} 已保存的状态
func HandleGetGame(store storage.GameStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := gameIDFrom(w, r)
		if !ok {
			return
		}

		s, err := store.Get(r.Context(), gameID)
		if err != nil {
			logger.Error("failed to get game %s: %v", gameID, err)
			writeAppError(w, err)
			return
		}
		if s == nil {
			writeAppError(w, apperrors.ErrGameNotFound)
			return
		}
		writeOK(w, s)
	}
}

// HandleSaveGame 保存提交的状态到 {id}
func HandleSaveGame(store storage.GameStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := gameIDFrom(w, r)
		if !ok {
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, apperrors.ErrInvalidGameState.Message)
				return
			}
			writeAppError(w, apperrors.ErrMissingGameState)
			return
		}
		if len(body) == 0 {
			writeAppError(w, apperrors.ErrMissingGameState)
			return
		}

		var s *state.GameState
		if err := json.Unmarshal(body, &s); err != nil {
			writeAppError(w, apperrors.ErrInvalidGameState)
			return
		}
		if s == nil {
			writeAppError(w, apperrors.ErrMissingGameState)
			return
		}

		if err := store.Upsert(r.Context(), gameID, s); err != nil {
			logger.Error("failed to save game %s: %v", gameID, err)
			writeAppError(w, err)
			return
		}
		writeOK(w, nil)
	}
}

func gameIDFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	gameID := mux.Vars(r)["id"]
	if !state.ValidGameID(gameID) {
		writeAppError(w, apperrors.ErrInvalidGameID)
		return "", false
	}
	return gameID, true
}
