package relay

import (
	"context"
	"sync"
	"time"

	"github.com/palemoky/paint-n-pass/internal/game/state"
	"github.com/palemoky/paint-n-pass/internal/logger"
	"github.com/palemoky/paint-n-pass/internal/storage"
)

const defaultSaveTimeout = 5 * time.Second

type saveRequest struct {
	GameID string
	State  *state.GameState
}

// PersistWorker 在转发路径之外异步写入快照。
// 按入队顺序保存；失败只记日志并丢弃，由下一次更新覆盖。
type PersistWorker struct {
	store       storage.GameStore
	requests    chan saveRequest
	saveTimeout time.Duration
	done        chan struct{}

	mu     sync.RWMutex
	closed bool
}

type PersistWorkerOptions struct {
	Store       storage.GameStore
	QueueSize   int
	SaveTimeout time.Duration
}

// NewPersistWorker 创建并启动写入协程
func NewPersistWorker(opts PersistWorkerOptions) *PersistWorker {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = defaultSaveTimeout
	}
	w := &PersistWorker{
		store:       opts.Store,
		requests:    make(chan saveRequest, opts.QueueSize),
		saveTimeout: opts.SaveTimeout,
		done:        make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue 非阻塞入队；队列已满或已关闭时丢弃快照并返回 false
func (w *PersistWorker) Enqueue(gameID string, s *state.GameState) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}

	select {
	case w.requests <- saveRequest{GameID: gameID, State: s}:
		return true
	default:
		logger.Warn("Persist queue full, dropping snapshot for game %s", gameID)
		return false
	}
}

// Close 停止接收请求，写完已入队的快照，等待协程退出或 ctx 超时
func (w *PersistWorker) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.requests)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending 排队中的写入数
func (w *PersistWorker) Pending() int {
	return len(w.requests)
}

func (w *PersistWorker) run() {
	defer close(w.done)
	for req := range w.requests {
		w.save(req)
	}
}

func (w *PersistWorker) save(req saveRequest) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), w.saveTimeout)
	defer cancel()

	if err := w.store.Upsert(ctx, req.GameID, req.State); err != nil {
		logger.Error("Failed to persist game %s: %v", req.GameID, err)
	}
}
