package economy

import "time"

// SetNow подменяет источник времени сервиса в тестах.
func (s *Service) SetNow(fn func() time.Time) {
	s.now = fn
}
