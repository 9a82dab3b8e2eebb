// Package signedkv wraps a core.KVStore so that every value is signed with the app secret.
// Values edited by hand (or written with another secret) read back as core.ErrMalformedValue,
// which the session treats as absent.
package signedkv

import (
	"context"

	"github.com/gorilla/securecookie"
	"github.com/pkg/errors"

	"github.com/trezcool/sahayak/core"
)

type Store struct {
	next  core.KVStore
	codec *securecookie.SecureCookie
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

func New(next core.KVStore, secretKey string) (*Store, error) {
	if secretKey == "" {
		return nil, core.NewArgumentError("signed storage needs a secret key")
	}
	codec := securecookie.New([]byte(secretKey), nil).
		SetSerializer(securecookie.JSONEncoder{}).
		MaxAge(0).   // sessions do not expire
		MaxLength(0) // nor are they capped to a cookie's size
	return &Store{next: next, codec: codec}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var value string
	if err = s.codec.Decode(key, string(raw), &value); err != nil {
		return nil, errors.Wrapf(core.ErrMalformedValue, "%s: %v", key, err)
	}
	return []byte(value), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	encoded, err := s.codec.Encode(key, string(value))
	if err != nil {
		return errors.Wrapf(err, "signing %s", key)
	}
	return s.next.Set(ctx, key, []byte(encoded))
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}
