package store

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/user/myzend/internal/model"
)

// Manager 按用户维护会话容器，LRU 淘汰长期不活跃的会话
// 淘汰只丢内存状态，权威数据在库里，下次访问时重建
type Manager struct {
	mu     sync.Mutex
	stores *lru.Cache[int, *Store]
	syncer Syncer
}

// NewManager 创建会话管理器，size 为最大并存会话数
func NewManager(size int, syncer Syncer) *Manager {
	c, _ := lru.New[int, *Store](size)
	return &Manager{stores: c, syncer: syncer}
}

// Get 取用户的会话容器，不存在则创建
func (m *Manager) Get(user *model.User) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores.Get(user.ID); ok {
		return s
	}
	s := New(user, m.syncer)
	m.stores.Add(user.ID, s)
	return s
}

// Peek 取用户的会话容器，不存在返回 nil
func (m *Manager) Peek(userID int) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores.Get(userID); ok {
		return s
	}
	return nil
}

// Drop 登出时清空并移除会话
func (m *Manager) Drop(userID int) {
	m.mu.Lock()
	s, ok := m.stores.Get(userID)
	if ok {
		m.stores.Remove(userID)
	}
	m.mu.Unlock()
	if ok {
		s.Logout()
	}
}

// Len 当前并存会话数
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stores.Len()
}
