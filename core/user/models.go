package user

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/yuva/core"
)

// Roles
const (
	// Admin
	RoleAdmin          = "admin:"
	RoleAdminOwner     = "admin:owner"
	RoleAdminPrincipal = "admin:principal"

	// Teacher
	RoleTeacher = "teacher:"

	// Guidance counselor
	RoleCounselor = "counselor:"

	// Chef
	RoleChef = "chef:"

	// Staff (sub-roles gate the staff panels)
	RoleStaff         = "staff:"
	RoleStaffCook     = "staff:cook"
	RoleStaffCleaning = "staff:cleaning"
	RoleStaffDriver   = "staff:driver"
	RoleStaffSecurity = "staff:security"
	RoleStaffToilet   = "staff:toilet"

	// Parent
	RoleParent = "parent:"
)

var (
	AdminRoles     = []string{RoleAdmin, RoleAdminOwner, RoleAdminPrincipal}
	TeacherRoles   = []string{RoleTeacher}
	CounselorRoles = []string{RoleCounselor}
	ChefRoles      = []string{RoleChef}
	StaffRoles     = []string{RoleStaff, RoleStaffCook, RoleStaffCleaning, RoleStaffDriver, RoleStaffSecurity, RoleStaffToilet}
	ParentRoles    = []string{RoleParent}
	AllRoles       = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner:     30,
		RoleAdminPrincipal: 29,
		RoleAdmin:          21,

		// Educators: 20 - 13
		RoleTeacher:   15,
		RoleCounselor: 14,

		// Kitchen & staff: 12 - 2
		RoleChef:          12,
		RoleStaff:         5,
		RoleStaffCook:     6,
		RoleStaffCleaning: 6,
		RoleStaffDriver:   6,
		RoleStaffSecurity: 6,
		RoleStaffToilet:   6,

		// Parents: 1
		RoleParent: 1,
	}

	Roles = []Role{
		{Name: "Parent", Value: RoleParent},
		{Name: "Staff", Value: RoleStaff},
		{Name: "Staff (Cook)", Value: RoleStaffCook},
		{Name: "Staff (Cleaning)", Value: RoleStaffCleaning},
		{Name: "Staff (Driver)", Value: RoleStaffDriver},
		{Name: "Staff (Security)", Value: RoleStaffSecurity},
		{Name: "Staff (Toilet Attendant)", Value: RoleStaffToilet},
		{Name: "Chef", Value: RoleChef},
		{Name: "Guidance Counselor", Value: RoleCounselor},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Principal", Value: RoleAdminPrincipal},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 13)
	all = append(all, AdminRoles...)
	all = append(all, TeacherRoles...)
	all = append(all, CounselorRoles...)
	all = append(all, ChefRoles...)
	all = append(all, StaffRoles...)
	all = append(all, ParentRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is a profile: the account of anyone using the app (admins, teachers, parents, staff...).
type User struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	IsActive     bool           `json:"is_active"`
	Roles        pq.StringArray `json:"roles"`
	PasswordHash []byte         `json:"-"`
	CreatedAt    time.Time      `json:"created_at"` // UTC
	UpdatedAt    time.Time      `json:"updated_at"` // UTC
	LastLogin    time.Time      `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u User) HasRole(role string) bool {
	return core.ContainsString(u.Roles, role)
}

func (u User) IsAdmin() bool     { return u.RoleStartsWith(RoleAdmin) }
func (u User) IsTeacher() bool   { return u.RoleStartsWith(RoleTeacher) }
func (u User) IsCounselor() bool { return u.RoleStartsWith(RoleCounselor) }
func (u User) IsChef() bool      { return u.RoleStartsWith(RoleChef) }
func (u User) IsStaff() bool     { return u.RoleStartsWith(RoleStaff) }
func (u User) IsParent() bool    { return u.RoleStartsWith(RoleParent) }

// IsEducator reports whether the user works with children directly (teachers and counselors).
func (u User) IsEducator() bool { return u.IsTeacher() || u.IsCounselor() }

// IsEmployee reports whether the user is school personnel of any kind.
func (u User) IsEmployee() bool { return u.IsAdmin() || u.IsEducator() || u.IsChef() || u.IsStaff() }

// StaffRole returns the staff sub-role (cook, cleaning, driver, security, toilet) or "".
func (u User) StaffRole() string {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, RoleStaff) && role != RoleStaff {
			return strings.TrimPrefix(role, RoleStaff)
		}
	}
	return ""
}

// HasAnyRole reports whether the user holds a role starting with any of `prefixes`.
func (u User) HasAnyRole(prefixes ...string) bool {
	for _, p := range prefixes {
		if u.RoleStartsWith(p) {
			return true
		}
	}
	return false
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"omitempty,min=4,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Phone           string   `json:"phone"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Phone = core.CleanString(nu.Phone)
	nu.Roles = core.CleanStrings(nu.Roles, true /* lower */)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name            string   `json:"name"`
	Username        string   `json:"username" validate:"omitempty,min=4,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Phone           *string  `json:"phone"`
	IsActive        *bool    `json:"is_active"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
	Password        string   `json:"password" validate:"omitempty"`
	PasswordConfirm string   `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) clean(origUsr User) {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}
	if uname := core.CleanString(uu.Username, true /* lower */); uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}
	if uu.Roles != nil {
		uu.Roles = core.CleanStrings(uu.Roles, true /* lower */)
	}
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

// GetFilter selects a single User. The first non-empty field wins.
type GetFilter struct {
	ID              string
	Email           string
	UsernameOrEmail string
}

type QueryFilter struct {
	Search   string   `query:"search"`
	Roles    []string `query:"role"`
	IsActive *bool    `query:"is_active"`
	IDs      []string `query:"id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.IDs == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Roles = core.CleanStrings(qf.Roles, true /* lower */)
	qf.IDs = core.CleanStrings(qf.IDs)
}

// InAudience reports whether the user belongs to `audience` (role prefixes).
// An empty audience means everyone; admins are part of every audience.
func (u User) InAudience(audience []string) bool {
	return len(audience) == 0 || u.IsAdmin() || u.HasAnyRole(audience...)
}
