package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

type newUserArgs struct {
	name, uname, email, pwd string
	roles                   []string
	isAdmin                 bool
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(args newUserArgs) error {
	ctx := context.Background()
	uname := core.CleanString(args.uname, true /* lower */)
	email := core.CleanString(args.email, true /* lower */)
	roles := core.CleanStrings(args.roles, true /* lower */)
	if args.isAdmin {
		roles = user.AllRoles
	}
	for _, role := range roles {
		if user.RolePriority(role) == 0 {
			return errors.Errorf("unknown role %q", role)
		}
	}

	exists := true
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		exists = false
		usr = user.User{
			Username:  uname,
			CreatedAt: time.Now().UTC(),
		}
	}

	usr.Email = email
	if args.name != "" {
		usr.Name = core.CleanString(args.name)
	}
	if roles != nil {
		usr.Roles = roles
	}
	if usr.Roles == nil {
		usr.Roles = []string{}
	}
	usr.IsActive = true
	usr.UpdatedAt = time.Now().UTC()
	if err = usr.SetPassword(args.pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}
