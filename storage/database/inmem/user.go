package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

type userRepository struct {
	db *table[user.User]
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.users}
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	excluded := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded = append(excluded, u.ID)
	}

	for _, usr := range repo.db.filter(func(u user.User) bool { return !in(u.ID, excluded) }) {
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	repo.db.insert(usr.ID, usr)
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	users := repo.db.filter(func(u user.User) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !(strings.Contains(strings.ToLower(u.Name), s) ||
				strings.Contains(u.Username, s) ||
				strings.Contains(u.Email, s)) {
				return false
			}
		}
		if len(filter.Roles) > 0 && !u.HasAnyRole(filter.Roles...) {
			return false
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			return false
		}
		if filter.IDs != nil && !in(u.ID, filter.IDs) {
			return false
		}
		return true
	})

	if len(ordering) > 0 && ordering[0].Field == "name" {
		if ordering[0].Ascending {
			return sorted(users, func(a, b user.User) bool { return a.Name < b.Name }), nil
		}
		return sorted(users, func(a, b user.User) bool { return a.Name > b.Name }), nil
	}
	return sorted(users, func(a, b user.User) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	var match func(user.User) bool
	switch {
	case filter.ID != "":
		if usr, ok := repo.db.get(filter.ID); ok {
			return usr, nil
		}
		return user.User{}, user.ErrNotFound
	case filter.Email != "":
		match = func(u user.User) bool { return u.Email == filter.Email }
	case filter.UsernameOrEmail != "":
		match = func(u user.User) bool {
			return u.Username == filter.UsernameOrEmail || u.Email == filter.UsernameOrEmail
		}
	default:
		return user.User{}, user.ErrNotFound
	}

	if usr, ok := repo.db.find(match); ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	if !repo.db.update(usr.ID, usr) {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) error {
	repo.db.delete(ids...)
	return nil
}
