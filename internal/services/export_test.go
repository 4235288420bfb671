package services

import "time"

// SetClock replaces the session clock in tests.
func (s *EditSessionService) SetClock(now func() time.Time) { s.now = now }

// SetClock replaces the schema clock in tests.
func (s *SchemaService) SetClock(now func() time.Time) { s.now = now }
