package testutil

import (
	"context"
	"testing"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/core/session"
	"github.com/trezcool/sahayak/core/user"
	"github.com/trezcool/sahayak/storage/directory"
	"github.com/trezcool/sahayak/storage/kv/inmem"
)

// NewStore returns a restored session store over the reference directory.
// Pass kv to share storage between stores (simulated restarts); nil gets a fresh one.
func NewStore(t *testing.T, kv core.KVStore) *session.Store {
	t.Helper()
	if kv == nil {
		kv = inmemkv.New()
	}
	store := session.NewStore(directory.NewStatic(), kv)
	store.Restore(context.Background())
	return store
}

// Login logs key in, failing the test on error.
func Login(t *testing.T, store *session.Store, key string) user.User {
	t.Helper()
	usr, err := store.Login(context.Background(), key)
	if err != nil {
		t.Fatalf("Login(%q) failed: %v", key, err)
	}
	return usr
}

// OnboardingProfile is a valid onboarding form: Grade 3, Science, sections 3A and 3B.
func OnboardingProfile() user.TeacherProfile {
	return user.TeacherProfile{
		Grades:     []string{"Grade 3"},
		Subjects:   []string{"Science"},
		Classes:    user.ClassMap{{Grade: "Grade 3", Sections: []string{"3A", "3B"}}},
		Experience: "1-2 years",
	}
}
