package testutil

import (
	"encoding/json"
	"errors"
	"sync"
)

// Socket records every frame it is sent.
type Socket struct {
	mu     sync.Mutex
	id     string
	closed bool
	frames [][]byte
}

func NewSocket(id string) *Socket {
	return &Socket{id: id}
}

func (s *Socket) ID() string { return s.id }

func (s *Socket) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *Socket) Send(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("closed")
	}
	s.frames = append(s.frames, frame)
	return nil
}

func (s *Socket) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Socket) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
}

// Types lists the "type" field of every recorded frame in order.
func (s *Socket) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	types := make([]string, 0, len(s.frames))
	for _, f := range s.frames {
		var env struct {
			Type string `json:"type"`
		}
		_ = json.Unmarshal(f, &env)
		types = append(types, env.Type)
	}
	return types
}

func (s *Socket) Count(typ string) int {
	n := 0
	for _, t := range s.Types() {
		if t == typ {
			n++
		}
	}
	return n
}

// Last decodes the most recent frame of the given type into v.
func (s *Socket) Last(typ string, v interface{}) bool {
	types := s.Types()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(types) - 1; i >= 0; i-- {
		if types[i] == typ {
			return json.Unmarshal(s.frames[i], v) == nil
		}
	}
	return false
}
