package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/core/user"
)

func TestRollbarLogger(t *testing.T) {
	usr := user.User{ID: "1", Name: "Sarah Johnson", Email: "teacher@school.com", Role: user.RoleTeacher}

	tests := []struct {
		name     string
		debug    bool
		logFunc  func(l *RollbarLogger)
		contains []string
		empty    bool
	}{
		{
			name:     "info with user",
			logFunc:  func(l *RollbarLogger) { l.Info("session: logged in", map[string]interface{}{"state": "onboarded_with_class"}, usr) },
			contains: []string{"[INFO] session: logged in", "state:onboarded_with_class", "user: 1 <teacher@school.com> (teacher)"},
		},
		{
			name:     "warn with error",
			logFunc:  func(l *RollbarLogger) { l.Warn("session: ignoring persisted user", errors.New("boom")) },
			contains: []string{"[WARN] session: ignoring persisted user", "boom"},
		},
		{
			name:    "debug is muted",
			logFunc: func(l *RollbarLogger) { l.Debug("session: restored") },
			empty:   true,
		},
		{
			name:     "debug when debugging",
			debug:    true,
			logFunc:  func(l *RollbarLogger) { l.Debug("session: restored") },
			contains: []string{"[DEBUG] session: restored"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			conf := &core.Config{Env: "TEST", TestMode: true, Debug: tt.debug}
			l := NewRollbarLogger(log.New(&buf, "", 0), conf)

			tt.logFunc(l)
			if tt.empty {
				assert.Empty(t, buf.String())
				return
			}
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}
