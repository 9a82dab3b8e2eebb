package user

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var (
	// errors
	ErrNotFound = errors.New("user not found")

	suggestMinRatio = .6
)

// Directory resolves identities. It stands in for a real identity provider:
// implementations may be slow, so every call takes a context.
type Directory interface {
	// Authenticate looks up the user registered under key (an email). ErrNotFound when unknown.
	Authenticate(ctx context.Context, key string) (User, error)
	// SaveProfile completes the onboarding of usr: sets the profile and flips the onboarded flag.
	SaveProfile(ctx context.Context, usr User, prof TeacherProfile) (User, error)
	// Keys lists every known lookup key, in directory order.
	Keys() []string
}

// Onboard returns a copy of usr carrying prof. Onboarding never reverts:
// calling it again just swaps the profile.
func Onboard(usr User, prof TeacherProfile) User {
	usr = usr.Clone()
	usr.IsOnboarded = true
	usr.Profile = prof.clone()
	return usr
}

// Suggest returns the known key closest to key, for "did you mean" hints.
func Suggest(key string, keys []string) (string, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || len(keys) == 0 {
		return "", false
	}

	type candidate struct {
		key   string
		ratio float64
	}
	candidates := make([]candidate, 0, len(keys))
	for _, k := range keys {
		m := difflib.NewMatcher(strings.Split(key, ""), strings.Split(k, ""))
		candidates = append(candidates, candidate{key: k, ratio: m.Ratio()})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].ratio > candidates[j].ratio })

	if best := candidates[0]; best.ratio >= suggestMinRatio {
		return best.key, true
	}
	return "", false
}
