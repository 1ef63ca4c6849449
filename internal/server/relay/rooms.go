package relay

import (
	"sort"
	"sync"

	"github.com/palemoky/paint-n-pass/internal/protocol"
)

// Conn 中继眼中的一个参与者连接，Send 不能阻塞
type Conn interface {
	ID() string
	Send(msg *protocol.Message)
}

// Rooms 对局 id 到连接的映射，房间只在有成员时存在
type Rooms struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]Conn   // gameID -> connID -> conn
	byConn map[string]map[string]struct{} // connID -> gameIDs
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms:  make(map[string]map[string]Conn),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Join 把 c 加入 gameID 并返回已有成员，重复加入无副作用
func (r *Rooms) Join(gameID string, c Conn) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[gameID]
	if !ok {
		members = make(map[string]Conn)
		r.rooms[gameID] = members
	}

	others := make([]Conn, 0, len(members))
	for id, m := range members {
		if id != c.ID() {
			others = append(others, m)
		}
	}
	members[c.ID()] = c

	joined, ok := r.byConn[c.ID()]
	if !ok {
		joined = make(map[string]struct{})
		r.byConn[c.ID()] = joined
	}
	joined[gameID] = struct{}{}
	return others
}

// Leave 把 connID 移出所有房间，删除空房间并返回其 id
func (r *Rooms) Leave(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var emptied []string
	for gameID := range r.byConn[connID] {
		members := r.rooms[gameID]
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, gameID)
			emptied = append(emptied, gameID)
		}
	}
	delete(r.byConn, connID)
	sort.Strings(emptied)
	return emptied
}

// Others gameID 中除 connID 外的成员
func (r *Rooms) Others(gameID, connID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[gameID]
	out := make([]Conn, 0, len(members))
	for id, m := range members {
		if id != connID {
			out = append(out, m)
		}
	}
	return out
}

// Size 房间人数，不存在时为 0
func (r *Rooms) Size(gameID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[gameID])
}

// Exists 房间是否存在
func (r *Rooms) Exists(gameID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[gameID]
	return ok
}

// Count 当前房间数
func (r *Rooms) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
