package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/palemoky/paint-n-pass/internal/logger"
	"github.com/palemoky/paint-n-pass/internal/protocol"
)

// window 固定窗口计数器
type window struct {
	start time.Time
	count int
}

// hit 计一次，返回当前窗口内的次数
func (w *window) hit(now time.Time, size time.Duration) int {
	if now.Sub(w.start) >= size {
		w.start = now
		w.count = 0
	}
	w.count++
	return w.count
}

// --- 连接速率限制 ---

// RateLimiter 按 IP 限制 WebSocket 握手频率，超限的 IP 封禁一段时间
type RateLimiter struct {
	mu    sync.Mutex
	peers map[string]*peerRate

	perSecond   int
	perMinute   int
	banDuration time.Duration
	idleTTL     time.Duration // 超过这么久没有握手的记录会被清理

	stop     chan struct{}
	stopOnce sync.Once
}

type peerRate struct {
	second      window
	minute      window
	lastSeen    time.Time
	bannedUntil time.Time
}

// NewRateLimiter 创建速率限制器，调用方负责 Stop
func NewRateLimiter(maxPerSecond, maxPerMinute int, banDuration time.Duration) *RateLimiter {
	rl := &RateLimiter{
		peers:       make(map[string]*peerRate),
		perSecond:   maxPerSecond,
		perMinute:   maxPerMinute,
		banDuration: banDuration,
		idleTTL:     10 * time.Minute,
		stop:        make(chan struct{}),
	}
	go rl.sweep(5 * time.Minute)
	return rl
}

// Allow 记录一次来自 ip 的握手，返回是否放行
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	p, ok := rl.peers[ip]
	if !ok {
		p = &peerRate{}
		rl.peers[ip] = p
	}
	p.lastSeen = now

	if now.Before(p.bannedUntil) {
		return false
	}
	if p.second.hit(now, time.Second) > rl.perSecond || p.minute.hit(now, time.Minute) > rl.perMinute {
		p.bannedUntil = now.Add(rl.banDuration)
		logger.Warn("IP %s 握手过于频繁，封禁 %v", ip, rl.banDuration)
		return false
	}
	return true
}

// IsBanned ip 当前是否被封禁
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	p, ok := rl.peers[ip]
	return ok && time.Now().Before(p.bannedUntil)
}

// Stop 停止清理协程
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.forgetIdle(now)
		}
	}
}

// forgetIdle 删除长时间没有握手且未被封禁的记录
func (rl *RateLimiter) forgetIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, p := range rl.peers {
		if now.Sub(p.lastSeen) > rl.idleTTL && now.After(p.bannedUntil) {
			delete(rl.peers, ip)
		}
	}
}

// --- 来源验证 ---

// OriginChecker 来源验证器
type OriginChecker struct {
	allowed  map[string]bool
	allowAll bool
}

// NewOriginChecker 创建来源验证器，"*" 放行所有来源
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{allowed: make(map[string]bool)}
	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowed[strings.ToLower(origin)] = true
	}
	return oc
}

// Check 检查来源是否允许
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// 终端客户端不带 Origin
		return true
	}
	return oc.allowed[strings.ToLower(origin)]
}

// GetClientIP 获取客户端真实 IP
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// --- 消息速率限制 ---

// MessageLimiter 按连接和消息类型限速。
// 心跳不计数；join_game 每次都会读取存储中的快照，单独按分钟计数；
// 其余消息（主要是 update_game）按秒计数。
type MessageLimiter struct {
	mu    sync.Mutex
	conns map[string]*connRate

	perSecond      int
	joinsPerMinute int
}

type connRate struct {
	updates  window
	joins    window
	warnings int
}

// NewMessageLimiter 创建消息限速器
func NewMessageLimiter(perSecond, joinsPerMinute int) *MessageLimiter {
	return &MessageLimiter{
		conns:          make(map[string]*connRate),
		perSecond:      perSecond,
		joinsPerMinute: joinsPerMinute,
	}
}

// Allow 记录 connID 发来的一条 t 类型消息，超限时返回 false 并累计一次警告
func (ml *MessageLimiter) Allow(connID string, t protocol.MessageType) bool {
	if t == protocol.MsgPing || t == protocol.MsgPong {
		return true
	}

	ml.mu.Lock()
	defer ml.mu.Unlock()

	c, ok := ml.conns[connID]
	if !ok {
		c = &connRate{}
		ml.conns[connID] = c
	}

	now := time.Now()
	var allowed bool
	if t == protocol.MsgJoinGame {
		allowed = c.joins.hit(now, time.Minute) <= ml.joinsPerMinute
	} else {
		allowed = c.updates.hit(now, time.Second) <= ml.perSecond
	}
	if !allowed {
		c.warnings++
	}
	return allowed
}

// Warnings 连接累计的超限次数
func (ml *MessageLimiter) Warnings(connID string) int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	if c, ok := ml.conns[connID]; ok {
		return c.warnings
	}
	return 0
}

// Forget 连接断开后删除记录
func (ml *MessageLimiter) Forget(connID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.conns, connID)
}
