package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/marmos91/datavault/pkg/grid"
)

// IssueCart mints a single-use transfer credential for the path set.
//
// The credential is not retained: carts are ephemeral by contract and this
// layer holds no durable state.
func (s *Store) IssueCart(ctx context.Context, user string, paths []string, direction grid.CartDirection) (*grid.CartCredential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[user]; !ok {
		return nil, fmt.Errorf("unknown user %q", user)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("cart requires at least one path")
	}

	password, err := temporaryPassword()
	if err != nil {
		return nil, fmt.Errorf("generating cart password: %w", err)
	}

	return &grid.CartCredential{
		Key:      uuid.NewString(),
		Password: password,
		Host:     s.cartHost,
		Port:     s.cartPort,
		User:     user,
		IssuedAt: s.now(),
	}, nil
}

// temporaryPassword generates a random one-time password for a cart.
func temporaryPassword() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
