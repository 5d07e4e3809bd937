package boiledrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/volatiletech/sqlboiler/v4/drivers"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"
	"github.com/volatiletech/sqlboiler/v4/types"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

const userColumns = `id, name, username, email, phone, is_active, roles, password_hash, created_at, updated_at, last_login`

var (
	dialect = drivers.Dialect{
		LQ:                   '"',
		RQ:                   '"',
		UseIndexPlaceholders: true,
		UseDefaultKeyword:    true,
	}

	userOrderings = []string{"name", "username", "email", "created_at", "last_login"}
)

func newQuery(mods ...qm.QueryMod) *queries.Query {
	q := &queries.Query{}
	queries.SetDialect(q, &dialect)
	qm.Apply(q, mods...)
	return q
}

// userRow is the "user" table as sqlboiler binds it.
type userRow struct {
	ID           string            `boil:"id"`
	Name         string            `boil:"name"`
	Username     null.String       `boil:"username"`
	Email        null.String       `boil:"email"`
	Phone        string            `boil:"phone"`
	IsActive     bool              `boil:"is_active"`
	Roles        types.StringArray `boil:"roles"`
	PasswordHash null.Bytes        `boil:"password_hash"`
	CreatedAt    time.Time         `boil:"created_at"`
	UpdatedAt    time.Time         `boil:"updated_at"`
	LastLogin    null.Time         `boil:"last_login"`
}

func boilUser(usr user.User) userRow {
	roles := types.StringArray(usr.Roles)
	if roles == nil {
		roles = types.StringArray{}
	}
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     null.NewString(usr.Username, usr.Username != ""),
		Email:        null.NewString(usr.Email, usr.Email != ""),
		Phone:        usr.Phone,
		IsActive:     usr.IsActive,
		Roles:        roles,
		PasswordHash: null.NewBytes(usr.PasswordHash, len(usr.PasswordHash) > 0),
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (row userRow) unboil() user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username.String,
		Email:        row.Email.String,
		Phone:        row.Phone,
		IsActive:     row.IsActive,
		Roles:        []string(row.Roles),
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		LastLogin:    row.LastLogin.Time.UTC(),
	}
}

type userRepository struct {
	exec boil.ContextExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec boil.ContextExecutor) user.Repository {
	return &userRepository{exec: exec}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	mods := []qm.QueryMod{
		qm.Select("username", "email"),
		qm.From(`"user"`),
		qm.Expr(qm.Where("username = ?", username), qm.Or("email = ?", email)),
	}
	if len(excludedUsers) > 0 {
		ids := make([]interface{}, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		mods = append(mods, qm.WhereNotIn("id NOT IN ?", ids...))
	}
	mods = append(mods, qm.Limit(1))

	var taken []struct {
		Username null.String `boil:"username"`
		Email    null.String `boil:"email"`
	}
	if err := newQuery(mods...).Bind(ctx, repo.exec, &taken); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if len(taken) > 0 {
		if username != "" && taken[0].Username.String == username {
			return user.ErrUsernameExists
		}
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := boilUser(usr)

	var created userRow
	err := queries.Raw(
		`INSERT INTO "user" (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING `+userColumns,
		row.ID, row.Name, row.Username, row.Email, row.Phone, row.IsActive, row.Roles, row.PasswordHash,
		row.CreatedAt, row.UpdatedAt, row.LastLogin,
	).Bind(ctx, repo.exec, &created)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return created.unboil(), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	mods := []qm.QueryMod{qm.Select(userColumns), qm.From(`"user"`)}

	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			mods = append(mods, qm.Expr(
				qm.Where("name ILIKE ?", val), qm.Or("username ILIKE ?", val), qm.Or("email ILIKE ?", val),
			))
		}
		// users with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			roleMods := make([]qm.QueryMod, 0, len(filter.Roles))
			for i, role := range filter.Roles {
				where := `EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role LIKE ?)`
				if i == 0 {
					roleMods = append(roleMods, qm.Where(where, role+"%"))
				} else {
					roleMods = append(roleMods, qm.Or(where, role+"%"))
				}
			}
			mods = append(mods, qm.Expr(roleMods...))
		}
		if filter.IsActive != nil {
			mods = append(mods, qm.Where("is_active = ?", *filter.IsActive))
		}
		if filter.IDs != nil {
			if len(filter.IDs) == 0 {
				return []user.User{}, nil
			}
			ids := make([]interface{}, 0, len(filter.IDs))
			for _, id := range filter.IDs {
				ids = append(ids, id)
			}
			mods = append(mods, qm.WhereIn("id::text IN ?", ids...))
		}
	}
	mods = append(mods, qm.OrderBy(core.OrderBy(ordering, userOrderings, "created_at DESC")))

	var rows []userRow
	if err := newQuery(mods...).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.unboil())
	}
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	mods := []qm.QueryMod{qm.Select(userColumns), qm.From(`"user"`)}

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		mods = append(mods, qm.Where("id = ?", filter.ID))
	case filter.Email != "":
		mods = append(mods, qm.Where("email = ?", filter.Email))
	case filter.UsernameOrEmail != "":
		mods = append(mods, qm.Expr(
			qm.Where("username = ?", filter.UsernameOrEmail), qm.Or("email = ?", filter.UsernameOrEmail),
		))
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	if err := newQuery(append(mods, qm.Limit(1))...).Bind(ctx, repo.exec, &row); err != nil {
		return user.User{}, trapNoRowsErr(err, "finding user")
	}
	return row.unboil(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := boilUser(usr)

	var updated userRow
	err := queries.Raw(
		`UPDATE "user" SET name = $2, username = $3, email = $4, phone = $5, is_active = $6, roles = $7,
			password_hash = $8, updated_at = $9, last_login = $10
		WHERE id = $1 RETURNING `+userColumns,
		row.ID, row.Name, row.Username, row.Email, row.Phone, row.IsActive, row.Roles, row.PasswordHash,
		row.UpdatedAt, row.LastLogin,
	).Bind(ctx, repo.exec, &updated)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, "updating user")
	}
	return updated.unboil(), nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	q := newQuery(qm.From(`"user"`), qm.WhereIn("id::text IN ?", args...))
	queries.SetDelete(q)
	if _, err := q.ExecContext(ctx, repo.exec); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
