package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/appointment"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/fee"
	"github.com/trezcool/yuva/core/transport"
	"github.com/trezcool/yuva/core/user"
	emailsvc "github.com/trezcool/yuva/services/email"
	inmemdb "github.com/trezcool/yuva/storage/database/inmem"
	testutil "github.com/trezcool/yuva/tests"
)

type env struct {
	cli       *commandLine
	out       *bytes.Buffer
	usrRepo   user.Repository
	childRepo child.Repository
}

func setup(t *testing.T) *env {
	conf := core.NewTestConfig()
	validate := testutil.NewValidator()
	mailSvc := emailsvc.NewConsoleServiceMock()

	db := inmemdb.Open()
	e := &env{
		out:       new(bytes.Buffer),
		usrRepo:   inmemdb.NewUserRepository(db),
		childRepo: inmemdb.NewChildRepository(db),
	}
	usrSvc := user.NewService(e.usrRepo, mailSvc, validate, conf)
	childSvc := child.NewService(e.childRepo, validate)

	e.cli = &commandLine{
		usrRepo:        e.usrRepo,
		transportSvc:   transport.NewService(inmemdb.NewTransportRepository(db), usrSvc, childSvc, core.NopPublisher, validate, conf),
		appointmentSvc: appointment.NewService(inmemdb.NewAppointmentRepository(db), usrSvc, childSvc, mailSvc, validate, conf),
		feeSvc:         fee.NewService(inmemdb.NewFeeRepository(db), childSvc, usrSvc, mailSvc, validate, conf),
		out:            e.out,
		pollInterval:   time.Millisecond,
	}
	return e
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	e := setup(t)

	runMigrationsFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "bus_stops", "sql"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, e.cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	e := setup(t)

	usr := testutil.CreateUser(t, e.usrRepo, "User", "awe", "awe@test.cd", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		tt := tt
		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := e.cli.run(append([]string{"admin"}, tt.args...))
			tt.check(t, err)
			if err == nil {
				refreshedUsr, err := e.usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				require.NoError(t, err)
				assert.NoError(t, refreshedUsr.CheckPassword(tt.extra.(extra).pwd))
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("Passw0rd"), nil }

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no email", args: []string{"adduser", "-username", "jdoe"}, wantErr: errHelp},
		{name: "unknown role", args: []string{"adduser", "-username", "jdoe", "-email", "jdoe@test.cd", "-roles", "wizard"}, wantErrStr: "unknown role \"wizard\""},
		{name: "create", args: []string{"adduser", "-username", "jdoe", "-email", "jdoe@test.cd", "-name", "John Doe", "-roles", "teacher:,parent:"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, e.cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	usr, err := e.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: "jdoe"})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", usr.Name)
	assert.True(t, usr.IsActive)
	assert.ElementsMatch(t, []string{user.RoleTeacher, user.RoleParent}, []string(usr.Roles))
	assert.NoError(t, usr.CheckPassword("Passw0rd"))

	t.Run("promote existing user", func(t *testing.T) {
		err := e.cli.run([]string{"admin", "adduser", "-username", "jdoe", "-email", "john@test.cd", "-admin"})
		require.NoError(t, err)

		usr, err := e.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: "jdoe"})
		require.NoError(t, err)
		assert.Equal(t, "John Doe", usr.Name)
		assert.Equal(t, "john@test.cd", usr.Email)
		assert.ElementsMatch(t, user.AllRoles, []string(usr.Roles))
	})
}

func Test_commandLine_track(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	admin := testutil.CreateUser(t, e.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	driver := testutil.CreateUser(t, e.usrRepo, "Driver", "driver", "driver@test.cd", "", []string{user.RoleStaffDriver}, true)

	v, err := e.cli.transportSvc.CreateVehicle(ctx, admin, transport.NewVehicle{Plate: "1234AB01", DriverID: driver.ID, Capacity: 12})
	require.NoError(t, err)

	tests := []cliTest{
		{name: "no args", args: []string{"track"}, wantErr: errHelp},
		{name: "no user", args: []string{"track", "-vehicle", v.ID}, wantErr: errHelp},
		{name: "unknown user", args: []string{"track", "-vehicle", v.ID, "-as", "lol"}, wantErr: user.ErrNotFound},
		{name: "no location yet", args: []string{"track", "-vehicle", v.ID, "-as", "admin"}, wantErr: transport.ErrNoLocation},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, errors.Cause(e.cli.run(append([]string{"admin"}, tt.args...))))
		})
	}

	lat, lng, speed := -4.3217, 15.3126, 32.5
	_, err = e.cli.transportSvc.ReportLocation(ctx, driver, v.ID, transport.LocationReport{Latitude: &lat, Longitude: &lng, Speed: &speed})
	require.NoError(t, err)

	e.out.Reset()
	require.NoError(t, e.cli.run([]string{"admin", "track", "-vehicle", v.ID, "-as", "driver@test.cd"}))
	assert.Contains(t, e.out.String(), "-4.321700,15.312600 32.5 km/h")
}

func Test_commandLine_sendReminders(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	admin := testutil.CreateUser(t, e.usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	kid := testutil.CreateChild(t, e.childRepo, "Kid", "Nido", "")

	past := core.DateOf(time.Now().AddDate(0, 0, -10))
	future := core.DateOf(time.Now().AddDate(0, 0, 10))
	for _, due := range []core.Date{past, future} {
		_, err := e.cli.feeSvc.Create(ctx, admin, fee.NewFee{ChildID: kid.ID, PaymentType: "tuition", Month: "2024-01", Amount: 100, DueDate: due})
		require.NoError(t, err)
	}

	require.NoError(t, e.cli.run([]string{"admin", "sendreminders"}))
	assert.Equal(t, "0 appointment reminder(s) sent\n1 fee(s) flagged overdue\n", e.out.String())
}
