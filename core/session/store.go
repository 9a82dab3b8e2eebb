package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/core/user"
)

var (
	// errors
	ErrNotLoggedIn      = errors.New("no user logged in")
	ErrRoleMismatch     = errors.New("only teachers go through onboarding")
	ErrOperationPending = errors.New("another session operation is pending")
	ErrSessionChanged   = errors.New("session changed while the operation was pending")
)

type Options struct {
	Logger core.Logger
	// NewID generates the id of each logged in session (logs & snapshots only).
	NewID func() string
}

// Store is the single authority over the session. It persists the user and the selected
// class under two independent keys of a core.KVStore.
//
// Login and CompleteOnboarding wait on the Directory with the loading flag raised; only one
// of them may be in flight at a time. Readers are never blocked by a pending call.
type Store struct {
	dir    user.Directory
	kv     core.KVStore
	logger core.Logger
	newID  func() string

	mu       sync.RWMutex
	restored bool
	loading  bool
	pending  bool
	gen      uint64 // bumped whenever the session is replaced or cleared
	id       string
	usr      *user.User
	class    *user.ClassContext
}

// NewStore creates a store. The session stays in the loading state until Restore is called.
func NewStore(dir user.Directory, kv core.KVStore, optFns ...func(o *Options)) *Store {
	opts := Options{
		Logger: core.NopLogger{},
		NewID:  func() string { return uuid.New().String() },
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		dir:     dir,
		kv:      kv,
		logger:  opts.Logger,
		newID:   opts.NewID,
		loading: true,
	}
}

// Restore loads the persisted session. Anything missing or unreadable counts as absent:
// the session then starts logged out, or without a selected class. It never fails.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.usr, s.class, s.id = nil, nil, ""
	s.gen++
	defer func() {
		s.restored = true
		s.loading = false
	}()

	usr, ok, err := loadUser(ctx, s.kv)
	if err != nil {
		s.logger.Warn("session: ignoring persisted user", err)
	}
	if !ok {
		return
	}
	s.usr = &usr
	s.id = s.newID()

	class, ok, err := loadClass(ctx, s.kv)
	if err != nil {
		s.logger.Warn("session: ignoring persisted class", err, usr)
	}
	if ok {
		s.class = &class
	}
	s.logger.Debug("session: restored", map[string]interface{}{"session_id": s.id, "state": s.stateLocked().String()}, usr)
}

// Login resolves key through the Directory and makes the result the current user.
// An onboarded teacher with at least one class gets the first class selected; everybody else
// starts without a class. An unknown key returns user.ErrNotFound and leaves the session untouched.
// A Logout while the directory call is pending wins: the login result is dropped with ErrSessionChanged.
func (s *Store) Login(ctx context.Context, key string) (user.User, error) {
	key = core.CleanString(key, true /* lower */)
	gen, err := s.begin()
	if err != nil {
		return user.User{}, err
	}

	usr, err := s.dir.Authenticate(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end()

	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			s.logger.Info("session: unknown login key", map[string]interface{}{"key": key})
			return user.User{}, errors.Wrapf(err, "login %q", key)
		}
		return user.User{}, errors.Wrap(err, "authenticating")
	}
	if s.gen != gen {
		return user.User{}, ErrSessionChanged
	}
	if err = usr.Check(); err != nil {
		return user.User{}, errors.Wrapf(err, "directory entry %q", key)
	}

	var class *user.ClassContext
	if first, ok := user.FirstClass(&usr); ok {
		class = &first
	}
	if err = s.commitLocked(ctx, &usr, class); err != nil {
		return user.User{}, err
	}
	s.gen++
	s.id = s.newID()

	s.logger.Info("session: logged in", map[string]interface{}{"session_id": s.id, "state": s.stateLocked().String()}, usr)
	return usr.Clone(), nil
}

// CompleteOnboarding attaches prof to the logged in teacher, flags them onboarded and selects
// their first class. prof is expected to be validated by the caller (see TeacherProfile.Validate).
// Calling it again replaces the profile.
func (s *Store) CompleteOnboarding(ctx context.Context, prof user.TeacherProfile) (user.User, error) {
	s.mu.Lock()
	switch {
	case s.pending:
		s.mu.Unlock()
		return user.User{}, ErrOperationPending
	case s.usr == nil:
		s.mu.Unlock()
		return user.User{}, ErrNotLoggedIn
	case !s.usr.IsTeacher():
		s.mu.Unlock()
		return user.User{}, ErrRoleMismatch
	}
	curr, gen := s.usr.Clone(), s.gen
	s.pending, s.loading = true, true
	s.mu.Unlock()

	usr, err := s.dir.SaveProfile(ctx, curr, prof)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end()

	if err != nil {
		return user.User{}, errors.Wrap(err, "saving profile")
	}
	if s.usr == nil || s.gen != gen {
		// logged out (or restored) meanwhile: drop the result
		return user.User{}, ErrSessionChanged
	}
	if err = usr.Check(); err != nil {
		return user.User{}, errors.Wrap(err, "checking onboarded user")
	}

	class := s.class
	if first, ok := user.FirstClass(&usr); ok {
		class = &first
	}
	if err = s.commitLocked(ctx, &usr, class); err != nil {
		return user.User{}, err
	}

	s.logger.Info("session: onboarding completed", map[string]interface{}{"session_id": s.id, "state": s.stateLocked().String()}, usr)
	return usr.Clone(), nil
}

// SwitchClass makes class the selected class. Membership in AllClasses is not checked here;
// callers that take the class from untrusted input should check IsKnownClass first.
func (s *Store) SwitchClass(ctx context.Context, class user.ClassContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := saveJSON(ctx, s.kv, ClassKey, class); err != nil {
		return err
	}
	s.class = &class
	return nil
}

// Logout forgets the user and the selected class, in memory and in storage.
// It is a no-op on an empty session.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usr != nil {
		s.logger.Info("session: logged out", map[string]interface{}{"session_id": s.id}, *s.usr)
	}
	s.usr, s.class, s.id = nil, nil, ""
	s.gen++

	errUsr := deleteKey(ctx, s.kv, UserKey)
	errClass := deleteKey(ctx, s.kv, ClassKey)
	if errUsr != nil {
		return errUsr
	}
	return errClass
}

// AllClasses lists the classes the current user may look at.
func (s *Store) AllClasses() []user.ClassContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return user.AllClasses(s.usr)
}

// IsKnownClass reports whether class is one of AllClasses.
func (s *Store) IsKnownClass(class user.ClassContext) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return user.HasClass(s.usr, class)
}

// User returns a copy of the current user.
func (s *Store) User() (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.usr == nil {
		return user.User{}, false
	}
	return s.usr.Clone(), true
}

// SelectedClass returns the selected class.
func (s *Store) SelectedClass() (user.ClassContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.class == nil {
		return user.ClassContext{}, false
	}
	return *s.class, true
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// Snapshot returns a copy of the whole session.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.stateLocked()
	snap := Snapshot{
		ID:      s.id,
		State:   state,
		Route:   state.Route(),
		Loading: s.loading,
	}
	if s.loading {
		snap.Route = RouteLoading
	}
	if s.usr != nil {
		usr := s.usr.Clone()
		snap.User = &usr
	}
	if s.class != nil {
		class := *s.class
		snap.SelectedClass = &class
	}
	return snap
}

func (s *Store) stateLocked() State {
	return stateOf(s.restored, s.usr, s.class)
}

// begin raises the loading flag for a directory call, refusing to start a second one.
// It returns the session generation the call started from.
func (s *Store) begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return 0, ErrOperationPending
	}
	s.pending, s.loading = true, true
	return s.gen, nil
}

// end lowers the loading flag; caller must hold the lock.
func (s *Store) end() {
	s.pending, s.loading = false, false
}

// commitLocked persists usr and class, then makes them current. When a write fails the
// in-memory session is left as it was and storage is put back to match it (best effort).
func (s *Store) commitLocked(ctx context.Context, usr *user.User, class *user.ClassContext) error {
	if err := persist(ctx, s.kv, usr, class); err != nil {
		if rbErr := persist(ctx, s.kv, s.usr, s.class); rbErr != nil {
			s.logger.Error("session: storage out of sync with memory", rbErr)
		}
		return err
	}
	u := usr.Clone()
	s.usr, s.class = &u, class
	return nil
}
