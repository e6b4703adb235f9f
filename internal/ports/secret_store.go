package ports

import "context"

// SecretStore resolves credentials by logical key, e.g. "discord-token".
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
}
