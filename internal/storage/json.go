package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// GetJSON reads the key and unmarshals it into v.
// A missing key or a malformed value both yield found=false and no error,
// so callers can carry on with their defaults.
func GetJSON(ctx context.Context, store Store, key string, v any) (found bool, err error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		log.Errorf("malformed value stored under [%s], ignoring it: %s", key, err)
		return false, nil
	}

	return true, nil
}

func SetJSON(ctx context.Context, store Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
