package env

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
)

const Prefix = "BOOKBOT_"

// aliases are the conventional variable names used by hosting platforms.
var aliases = map[string][]string{
	"discord-token":        {"DISCORD_TOKEN"},
	"google-books-api-key": {"GOOGLE_BOOKS_API_KEY", "GOOGLE_API_KEY"},
}

type Store struct {
	lookup func(string) (string, bool)
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{lookup: os.LookupEnv}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	for _, name := range VariableNames(key) {
		if value, ok := s.lookup(name); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), nil
		}
	}

	return "", fmt.Errorf("env secret %q: %w", key, domain.ErrSecretNotFound)
}

// VariableNames lists the environment variables consulted for key, in order.
func VariableNames(key string) []string {
	normalized := strings.ToUpper(strings.NewReplacer("-", "_", "/", "_", ".", "_").Replace(strings.TrimSpace(key)))
	names := []string{Prefix + normalized}
	return append(names, aliases[strings.ToLower(strings.TrimSpace(key))]...)
}
