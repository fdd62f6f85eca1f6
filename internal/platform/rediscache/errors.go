package rediscache

import (
	"errors"
	"fmt"
	"net"

	"github.com/phrazzld/vocab-api/internal/store"
	"github.com/redis/go-redis/v9"
)

// MapError translates go-redis errors into store errors.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return store.ErrNotFound
	}

	var netErr net.Error
	if errors.Is(err, redis.ErrClosed) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return err
}
