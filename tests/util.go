package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/user"
)

// NewValidator returns a validator with the core and user validators registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if usr.Roles == nil {
		usr.Roles = []string{}
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateChild stores an active child of `className` linked to `teacherID` and `parentIDs`.
func CreateChild(t *testing.T, repo child.Repository, name, className, teacherID string, parentIDs ...string) child.Child {
	now := time.Now().UTC()
	c := child.Child{
		Name:      name,
		ClassName: className,
		ParentIDs: parentIDs,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if teacherID != "" {
		c.TeacherID.SetValid(teacherID)
	}
	if c.ParentIDs == nil {
		c.ParentIDs = []string{}
	}
	c, err := repo.CreateChild(context.Background(), c)
	if err != nil {
		t.Fatalf("createChild() failed: %v", err)
	}
	return c
}
