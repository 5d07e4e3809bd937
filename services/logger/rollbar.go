package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

// RollbarLogger reports every entry to rollbar and echoes it to a StdLogger.
type RollbarLogger struct {
	StdLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetServerRoot("github.com/trezcool/yuva")
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{StdLogger: StdLogger{std: std}}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// item is what gets sent to rollbar for one log entry.
type item struct {
	err    error
	extras map[string]interface{}
	actor  *user.User
}

// newItem sorts log args into the shape rollbar understands. The first error
// is reported as such and the first user.User becomes the person. Maps merge
// into the custom data and anything else is kept under "args".
func newItem(args []interface{}) item {
	var it item
	extras := make(map[string]interface{})
	var rest []interface{}
	for _, arg := range args {
		switch a := arg.(type) {
		case user.User:
			if it.actor == nil {
				usr := a
				it.actor = &usr
			}
		case error:
			if it.err == nil {
				it.err = a
			} else {
				rest = append(rest, a.Error())
			}
		case map[string]interface{}:
			for k, v := range a {
				extras[k] = v
			}
		default:
			rest = append(rest, a)
		}
	}
	if rest != nil {
		extras["args"] = rest
	}
	if it.actor != nil {
		extras["actor_roles"] = []string(it.actor.Roles)
		if role := it.actor.StaffRole(); role != "" {
			extras["actor_staff_role"] = role
		}
	}
	if len(extras) > 0 {
		it.extras = extras
	}
	return it
}

func (it item) rollbarArgs(msg string) []interface{} {
	args := []interface{}{msg}
	if it.err != nil {
		args = append(args, it.err)
	}
	if it.extras != nil {
		args = append(args, it.extras)
	}
	return args
}

func (l RollbarLogger) send(level, msg string, args []interface{}) {
	it := newItem(args)
	if it.actor != nil {
		rollbar.SetPerson(it.actor.ID, it.actor.Username, it.actor.Email)
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Log(level, it.rollbarArgs(msg)...)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.send(rollbar.DEBUG, msg, args)
	l.StdLogger.Debug(msg, args...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.send(rollbar.INFO, msg, args)
	l.StdLogger.Info(msg, args...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.send(rollbar.WARN, msg, args)
	l.StdLogger.Warn(msg, args...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.send(rollbar.ERR, msg, args)
	l.StdLogger.Error(msg, args...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.send(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.StdLogger.Fatal(msg, args...)
}

// Close waits for the queued rollbar items to be sent.
func (l RollbarLogger) Close() {
	rollbar.Wait()
}
