package session

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/core/user"
)

// Storage keys. Changing the shape of what is stored under them breaks existing sessions.
const (
	UserKey  = "sahayak_user"
	ClassKey = "sahayak_selected_class"
)

var errMalformedClass = errors.New("malformed class")

// loadUser reads the persisted user. ok is false when nothing usable is stored.
func loadUser(ctx context.Context, kv core.KVStore) (usr user.User, ok bool, err error) {
	data, err := kv.Get(ctx, UserKey)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return user.User{}, false, nil
		}
		return user.User{}, false, errors.Wrap(err, "reading user")
	}
	if usr, err = user.DecodeUser(data); err != nil {
		return user.User{}, false, err
	}
	return usr, true, nil
}

// loadClass reads the persisted class. ok is false when nothing usable is stored.
func loadClass(ctx context.Context, kv core.KVStore) (class user.ClassContext, ok bool, err error) {
	data, err := kv.Get(ctx, ClassKey)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return user.ClassContext{}, false, nil
		}
		return user.ClassContext{}, false, errors.Wrap(err, "reading class")
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return user.ClassContext{}, false, errors.Wrap(errMalformedClass, "decoding class")
	}
	if err = json.Unmarshal(data, &class); err != nil {
		return user.ClassContext{}, false, errors.Wrap(err, "decoding class")
	}
	if class.Grade == "" || class.ClassName == "" {
		return user.ClassContext{}, false, errors.Wrap(errMalformedClass, "decoding class")
	}
	return class, true, nil
}

func saveJSON(ctx context.Context, kv core.KVStore, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	if err = kv.Set(ctx, key, data); err != nil {
		return errors.Wrapf(err, "writing %s", key)
	}
	return nil
}

func deleteKey(ctx context.Context, kv core.KVStore, key string) error {
	if err := kv.Delete(ctx, key); err != nil {
		return errors.Wrapf(err, "deleting %s", key)
	}
	return nil
}

// persist writes both keys; a nil value deletes its key.
func persist(ctx context.Context, kv core.KVStore, usr *user.User, class *user.ClassContext) error {
	if usr == nil {
		if err := deleteKey(ctx, kv, UserKey); err != nil {
			return err
		}
	} else if err := saveJSON(ctx, kv, UserKey, *usr); err != nil {
		return err
	}
	if class == nil {
		return deleteKey(ctx, kv, ClassKey)
	}
	return saveJSON(ctx, kv, ClassKey, *class)
}
