package usecase

import (
	"fmt"

	"zoo-assistant/internal/domain"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// CheckPage validates list paging: limit in 1..MaxPageLimit, offset >= 0.
func CheckPage(limit, offset int) error {
	if limit < 1 || limit > MaxPageLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidArgument, MaxPageLimit)
	}
	if offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidArgument)
	}
	return nil
}
