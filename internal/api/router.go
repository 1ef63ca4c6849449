// Package api serves the request/response view of stored games:
// GET and POST /games/{id}.
package api

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/palemoky/paint-n-pass/internal/logger"
	"github.com/palemoky/paint-n-pass/internal/storage"
)

// Register 在 r 上挂载对局路由
func Register(r *mux.Router, store storage.GameStore) {
	get, save := HandleGetGame(store), HandleSaveGame(store)

	r.HandleFunc("/games/{id:.*}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			get(w, r)
		case http.MethodPost:
			save(w, r)
		default:
			w.Header().Set("Allow", "GET, POST")
			writeError(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
		}
	})
}

// NewHandler 只包含对局路由的独立 router
func NewHandler(store storage.GameStore) http.Handler {
	r := mux.NewRouter()
	r.Use(LogRequests)
	Register(r, store)
	return r
}

// LogRequests 记录每个请求的方法、路径、状态码和耗时
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		logger.Debug("handled %s %s status=%d duration=%s bytes=%d", r.Method, r.URL.Path, m.Code, m.Duration, m.Written)
	})
}
