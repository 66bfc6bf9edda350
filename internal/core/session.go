package core

import (
	"path"

	"mpsh/internal/device"
)

// Session хранит состояние shell-процесса: единственное соединение
// с платой и текущую удаленную директорию. Владеет им диспетчер;
// открытие и закрытие делают команды open/close.
type Session struct {
	conn device.Conn
	cwd  string
}

// NewSession создает сессию без открытого соединения.
func NewSession() *Session {
	return &Session{cwd: "/"}
}

// Connected сообщает, открыто ли соединение.
func (s *Session) Connected() bool {
	return s.conn != nil
}

// Conn возвращает активное соединение или nil.
func (s *Session) Conn() device.Conn {
	return s.conn
}

// SetConn делает соединение активным и сбрасывает удаленную директорию.
// Прежнее соединение, если было, предварительно закрывается.
func (s *Session) SetConn(c device.Conn) {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn = c
	s.cwd = "/"
}

// Close закрывает активное соединение. Повторный вызов безопасен.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.cwd = "/"
	return err
}

// Cwd возвращает текущую удаленную директорию.
func (s *Session) Cwd() string {
	return s.cwd
}

// SetCwd запоминает удаленную директорию. Путь нормализуется.
func (s *Session) SetCwd(dir string) {
	s.cwd = path.Clean("/" + dir)
}

// Resolve переводит путь на плате в абсолютный относительно cwd.
// ampy не хранит рабочую директорию, поэтому она отслеживается
// на стороне клиента.
func (s *Session) Resolve(p string) string {
	if p == "" {
		return s.cwd
	}
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Clean(path.Join(s.cwd, p))
}
