package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/yuva/core/appointment"
	"github.com/trezcool/yuva/core/fee"
	"github.com/trezcool/yuva/core/transport"
	"github.com/trezcool/yuva/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db             *sql.DB
	usrRepo        user.Repository
	transportSvc   *transport.Service
	appointmentSvc *appointment.Service
	feeSvc         *fee.Service
	out            io.Writer
	pollInterval   time.Duration
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-name NAME] [-roles ROLE,...] [-admin] - create or update a user")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, down, status, redo, ...)")
	fmt.Println("  track -vehicle VEHICLE_ID -as USERNAME [-watch] - print a vehicle's latest location")
	fmt.Println("  sendreminders - send due appointment reminders and flag overdue fees")
}

func (cli *commandLine) promptPassword(fs *flag.FlagSet) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username. The password will be prompted next.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserRoles := addUserCmd.String("roles", "", "Comma separated roles, eg. teacher:,parent:.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Give the user every role.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	trackCmd := flag.NewFlagSet("track", flag.ContinueOnError)
	trackVehicle := trackCmd.String("vehicle", "", "The vehicle's ID.")
	trackAs := trackCmd.String("as", "", "Username or email of the user the location is read for.")
	trackWatch := trackCmd.Bool("watch", false, "Keep printing the location until interrupted.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(addUserCmd)
		if err != nil {
			return err
		}
		var roles []string
		if *addUserRoles != "" {
			roles = strings.Split(*addUserRoles, ",")
		}
		return cli.addUser(newUserArgs{
			name:    *addUserName,
			uname:   *addUserUname,
			email:   *addUserEmail,
			pwd:     pwd,
			roles:   roles,
			isAdmin: *addUserAdmin,
		})

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "track":
		if err := trackCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *trackVehicle == "" || *trackAs == "" {
			trackCmd.Usage()
			return errHelp
		}
		return cli.track(*trackVehicle, *trackAs, *trackWatch)

	case "sendreminders":
		return cli.sendReminders()

	default:
		cli.printUsage()
		return errHelp
	}
}
