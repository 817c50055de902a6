package common

import (
	"context"
	"fmt"

	"github.com/folioworks/folio/internal/interfaces"
)

// ResolveAPIKey returns the API key for a client, preferring the value
// stored in system KV over the config file so keys rotated at runtime win.
// Returns an error when neither source has a value.
func ResolveAPIKey(ctx context.Context, store interfaces.InternalStore, kvKey, configValue string) (string, error) {
	if store != nil {
		if value, err := store.GetSystemKV(ctx, kvKey); err == nil && value != "" {
			return value, nil
		}
	}
	if configValue != "" {
		return configValue, nil
	}
	return "", fmt.Errorf("api key %s not configured", kvKey)
}
