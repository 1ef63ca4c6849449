package server

import (
	"context"
	"runtime"
	"time"

	"github.com/palemoky/paint-n-pass/internal/logger"
)

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		logger.Info("[监控] 在线: %d | 房间: %d | 待写快照: %d | Goroutines: %d | 活跃连接: %d/%d | 内存: %.2f MB",
			s.GetOnlineCount(),
			s.relay.Rooms().Count(),
			s.relay.PendingSaves(),
			runtime.NumGoroutine(),
			len(s.semaphore),
			s.maxConnections,
			float64(m.Alloc)/1024/1024)
	}
}

// Shutdown 优雅关闭：停止接收请求，断开所有连接，写完排队中的快照，最后关闭存储
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if e := s.httpServer.Shutdown(ctx); e != nil {
			logger.Warn("HTTP 服务关闭超时: %v", e)
			err = e
		}

		// 关闭所有客户端连接（已被 hijack，不受 httpServer.Shutdown 影响）
		s.clientsMu.RLock()
		for _, client := range s.clients {
			client.Close()
		}
		s.clientsMu.RUnlock()

		if e := s.relay.Close(ctx); e != nil {
			logger.Error("快照写入未完成: %v", e)
			err = e
		}

		s.cancel()
		s.rateLimiter.Stop()

		if e := s.store.Close(); e != nil {
			logger.Error("关闭存储失败: %v", e)
		}
		logger.Info("服务器已关闭")
	})
	return err
}
