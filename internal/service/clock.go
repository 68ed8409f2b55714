package service

import (
	"time"

	"token-ledger/internal/core/ports"
)

// systemClock implements ports.Clock with the wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the process-wide wall clock.
func SystemClock() ports.Clock { return systemClock{} }
