// Package session owns the process-wide session: who is logged in, whether they went
// through onboarding, and which class they are looking at. Views read it through
// Snapshot and the read accessors of Store; only Store mutates it.
package session

import (
	"github.com/trezcool/sahayak/core/user"
)

// State is the position of a session in its lifecycle.
type State int

const (
	StateUnknown State = iota // not restored yet
	StateLoggedOut
	StateNotOnboarded
	StateOnboardedNoClass
	StateOnboardedWithClass
)

var stateNames = map[State]string{
	StateUnknown:            "unknown",
	StateLoggedOut:          "logged_out",
	StateNotOnboarded:       "not_onboarded",
	StateOnboardedNoClass:   "onboarded_no_class",
	StateOnboardedWithClass: "onboarded_with_class",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "invalid"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Views
const (
	RouteLoading    = "loading"
	RouteLogin      = "login"
	RouteOnboarding = "onboarding"
	RouteDashboard  = "dashboard"
)

// Route names the view a consumer should render for this state.
func (s State) Route() string {
	switch s {
	case StateLoggedOut:
		return RouteLogin
	case StateNotOnboarded:
		return RouteOnboarding
	case StateOnboardedNoClass, StateOnboardedWithClass:
		return RouteDashboard
	default:
		return RouteLoading
	}
}

func stateOf(restored bool, usr *user.User, class *user.ClassContext) State {
	switch {
	case usr == nil && !restored:
		return StateUnknown
	case usr == nil:
		return StateLoggedOut
	case !usr.IsOnboarded:
		return StateNotOnboarded
	case class == nil:
		return StateOnboardedNoClass
	default:
		return StateOnboardedWithClass
	}
}

// Snapshot is a read-only copy of the session. Mutating it does not affect the Store.
type Snapshot struct {
	ID            string             `json:"sessionId,omitempty"`
	State         State              `json:"state"`
	Route         string             `json:"route"`
	Loading       bool               `json:"loading"`
	User          *user.User         `json:"user"`
	SelectedClass *user.ClassContext `json:"selectedClass"`
}
