package editor

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/omagari/pkg/expr"
)

// Session 跨次启动保留的编辑状态
type Session struct {
	LastProject string     `yaml:"last_project"`
	Clipboard   *expr.Node `yaml:"clipboard,omitempty"`
}

// 存储路径常量
const (
	sessionObject   = "session"
	sessionProperty = "editor"
)

// SessionStore 会话存储
// 负责上次打开的工程和剪贴板表达式的加载、保存
type SessionStore struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	session      Session
}

// NewSessionStore 创建会话存储并尝试加载已保存的会话
//
// 参数：
//   - gdataManager: gdata 存储管理器，可为 nil（降级模式，仅内存）
func NewSessionStore(gdataManager *gdata.Manager) *SessionStore {
	s := &SessionStore{gdataManager: gdataManager}
	if err := s.Load(); err != nil {
		// 加载失败不是致命错误，使用空会话
		log.Printf("[SessionStore] Warning: Failed to load session: %v (starting empty)", err)
	}
	return s
}

// OpenSessionStore 以 appName 打开 gdata 并创建会话存储
//
// gdata 打开失败时降级为内存存储。
func OpenSessionStore(appName string) *SessionStore {
	if err := ensureStorageDir(); err != nil {
		log.Printf("[SessionStore] Warning: %v", err)
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[SessionStore] Warning: gdata unavailable: %v (session kept in memory)", err)
		m = nil
	}
	return NewSessionStore(m)
}

// Load 从 gdata 加载会话
func (s *SessionStore) Load() error {
	s.session = Session{}
	if s.gdataManager == nil {
		return nil
	}
	if !s.gdataManager.ObjectPropExists(sessionObject, sessionProperty) {
		return nil
	}

	data, err := s.gdataManager.LoadObjectProp(sessionObject, sessionProperty)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	var loaded Session
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}
	s.session = loaded
	return nil
}

// Save 保存会话到 gdata，降级模式下直接返回 nil
func (s *SessionStore) Save() error {
	if s.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(&s.session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.gdataManager.SaveObjectProp(sessionObject, sessionProperty, data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Session 返回当前会话
func (s *SessionStore) Session() Session {
	return s.session
}

// Persistent 报告会话是否会写入磁盘
func (s *SessionStore) Persistent() bool {
	return s.gdataManager != nil
}

// Remember 从编辑上下文记录工程文件名和剪贴板
// 注意：仅修改内存中的会话，需调用 Save() 持久化
func (s *SessionStore) Remember(ctx *Context) {
	s.session.LastProject = ctx.Filename
	s.session.Clipboard = nil
	if ctx.Clipboard != nil {
		cp := ctx.Clipboard.Clone()
		s.session.Clipboard = &cp
	}
}

// Restore 把会话中的剪贴板写回编辑上下文，并在上下文没有文件名时恢复上次的工程
func (s *SessionStore) Restore(ctx *Context) {
	if ctx.Filename == "" {
		ctx.Filename = s.session.LastProject
	}
	if s.session.Clipboard != nil {
		ctx.Copy(*s.session.Clipboard)
	}
}
