package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/core/user"
)

// Levels
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// RollbarLogger prints every event to std and reports those at or above minLevel to Rollbar.
type RollbarLogger struct {
	std      *log.Logger
	minLevel int
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)

	minLevel := LevelInfo
	if conf.Debug {
		minLevel = LevelDebug
	}
	return &RollbarLogger{std: std, minLevel: minLevel}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, user.User
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var usrSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		// set the session's User
		if usr, ok := arg.(user.User); ok {
			if !usrSet { // only set one User
				rollbar.SetPerson(usr.ID, usr.Name, usr.Email)
				usrSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

func (l RollbarLogger) print(level int, msg string, args []interface{}) {
	l.std.Printf("[%s] %s", levelNames[level], msg)
	for _, arg := range args {
		if usr, ok := arg.(user.User); ok {
			l.std.Printf("\tuser: %s <%s> (%s)", usr.ID, usr.Email, usr.Role)
			continue
		}
		l.std.Printf("\t%+v", arg)
	}
}

func (l RollbarLogger) log(level int, msg string, args []interface{}, report func(...interface{})) {
	if level < l.minLevel {
		return
	}
	report(l.prepare(msg, args)...)
	l.print(level, msg, args)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args, rollbar.Debug)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args, rollbar.Info)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args, rollbar.Warning)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args, rollbar.Error)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(LevelFatal, msg, args, rollbar.Critical)
	rollbar.Wait()
	l.std.Fatal(msg)
}
