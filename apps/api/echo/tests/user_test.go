package tests

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/apps/api/echo"
	"github.com/trezcool/yuva/core/user"
	"github.com/trezcool/yuva/tests"
)

func Test_userApi_login(t *testing.T) {
	e := setup(t)

	teacher := e.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	naughty := testutil.CreateUser(t, e.usrRepo, "N Dog", "ndog", "ndog@test.cd", "Passw0rd", []string{user.RoleParent}, false) // 😂

	tests := []httpTest{
		{name: "empty credentials", wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"})},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: teacher.Username, Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "unknown user", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: "nobody", Password: "Passw0rd"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Username: naughty.Username, Password: "Passw0rd"}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "by username", wantCode: http.StatusOK, body: marchallObj(t, echoapi.LoginRequest{Username: "TEACHER ", Password: "Passw0rd"})},
		{name: "by email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.LoginRequest{Username: teacher.Email, Password: "Passw0rd"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			e.serve(req, rec)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp echoapi.LoginResponse
				unmarshall(t, rec, &resp)
				assert.NotEmpty(t, resp.Token)

				// the token opens the authed endpoints
				req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", resp.Token)
				e.serve(req, rec)
				assert.Equal(t, http.StatusOK, rec.Code)
			}
		})
	}

	usr, err := e.usrRepo.GetUser(context.Background(), user.GetFilter{ID: teacher.ID})
	require.NoError(t, err)
	assert.False(t, usr.LastLogin.IsZero())
}

func Test_userApi_me(t *testing.T) {
	e := setup(t)

	parent := e.createUser(t, "Parent", "parent", user.RoleParent)
	gone := e.createUser(t, "Gone", "gone", user.RoleParent)
	goneToken := getToken(t, e.conf, gone)
	require.NoError(t, e.usrRepo.DeleteUsersByID(context.Background(), gone.ID))

	runHTTPTests(t, e, []httpTest{
		{name: "Auth required", path: "/v1/users/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Bad token", path: "/v1/users/me", token: "lol", wantCode: http.StatusUnauthorized},
		{name: "Deleted user", path: "/v1/users/me", token: goneToken, wantCode: http.StatusUnauthorized},
		{name: "OK", path: "/v1/users/me", token: getToken(t, e.conf, parent), wantCode: http.StatusOK, wantData: marchallObj(t, parent)},
	})
}

func Test_userApi_query(t *testing.T) {
	e := setup(t)

	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	teacher := e.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	parent := e.createUser(t, "Parent", "parent", user.RoleParent)

	adminToken := getToken(t, e.conf, admin)

	runHTTPTests(t, e, []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", path: "/v1/users", token: getToken(t, e.conf, teacher), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "Get all", path: "/v1/users", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, admin, teacher, parent)},
		{name: "role=teacher:", path: "/v1/users?role=teacher:", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, teacher)},
		{name: "search (unknown)", path: "/v1/users?search=lol", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t)},
	})
}

func Test_userApi_contacts(t *testing.T) {
	e := setup(t)

	teacher := e.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	parent := e.createUser(t, "Parent", "parent", user.RoleParent)
	_ = testutil.CreateUser(t, e.usrRepo, "N Dog", "ndog", "ndog@test.cd", "", []string{user.RoleParent}, false)

	runHTTPTests(t, e, []httpTest{
		{
			name: "active users only", path: "/v1/users/contacts", token: getToken(t, e.conf, parent), wantCode: http.StatusOK,
			wantData: marchallList(t,
				echoapi.Contact{ID: teacher.ID, Name: teacher.Name, Roles: teacher.Roles},
				echoapi.Contact{ID: parent.ID, Name: parent.Name, Roles: parent.Roles},
			),
		},
	})
}

func Test_userApi_detail(t *testing.T) {
	e := setup(t)

	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	teacher := e.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	parent := e.createUser(t, "Parent", "parent", user.RoleParent)

	runHTTPTests(t, e, []httpTest{
		{name: "own profile", path: "/v1/users/" + parent.ID, token: getToken(t, e.conf, parent), wantCode: http.StatusOK, wantData: marchallObj(t, parent)},
		{name: "someone else's", path: "/v1/users/" + teacher.ID, token: getToken(t, e.conf, parent), wantCode: http.StatusNotFound},
		{name: "admin", path: "/v1/users/" + teacher.ID, token: getToken(t, e.conf, admin), wantCode: http.StatusOK, wantData: marchallObj(t, teacher)},
		{
			name: "cannot delete self", method: http.MethodDelete, path: "/v1/users/" + admin.ID, token: getToken(t, e.conf, admin),
			wantCode: http.StatusForbidden,
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/users/" + parent.ID, token: getToken(t, e.conf, admin), wantCode: http.StatusNoContent},
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	e := setup(t)

	naughty := testutil.CreateUser(t, e.usrRepo, "N Dog", "ndog", "ndog@test.cd", "", []string{user.RoleParent}, false) // 😂
	parent := e.createUser(t, "Parent", "parent", user.RoleParent)

	now := time.Now()
	unrefreshableClaims := echoapi.NewClaims(e.conf, parent, now.Add(-2*e.conf.Server.JWTRefreshExpirationDelta).Unix())
	unrefreshableClaims.StandardClaims = jwt.StandardClaims{
		Issuer:    e.conf.AppName,
		Subject:   parent.ID,
		ExpiresAt: now.Add(e.conf.Server.JWTExpirationDelta).Unix(),
		IssuedAt:  now.Unix(),
	}
	unrefreshableToken, err := echoapi.GenerateToken(e.conf, unrefreshableClaims)
	require.NoError(t, err)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Inactive user not allowed", token: getToken(t, e.conf, naughty), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: getToken(t, e.conf, parent), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", tt.token)
			e.serve(req, rec)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				require.Equal(t, tt.wantCode, rec.Code)
				var respData echoapi.LoginResponse
				unmarshall(t, rec, &respData)
				assert.NotEmpty(t, respData.Token)
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_resetPassword(t *testing.T) {
	e := setup(t)

	parent := e.createUser(t, "Parent", "parent", user.RoleParent)
	successData := marchallObj(t, echoapi.SuccessResponse{Success: "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})

	tests := []struct {
		httpTest
		to *mail.Address
	}{
		{httpTest: httpTest{name: "unknown email", body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.com"})}},
		{
			httpTest: httpTest{name: "known email", body: marchallObj(t, echoapi.PasswordResetRequest{Email: parent.Email})},
			to:       &mail.Address{Name: parent.Name, Address: parent.Email},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.mail.Reset()
			tt.wantCode = http.StatusOK
			tt.wantData = successData

			req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", tt.body)
			e.serve(req, rec)
			checkCodeAndData(t, tt.httpTest, rec)

			msgs := e.mail.Messages()
			if tt.to == nil {
				assert.Empty(t, msgs)
				return
			}
			require.Len(t, msgs, 1)
			assert.Equal(t, *tt.to, msgs[0].To[0])
			assert.True(t, strings.Contains(msgs[0].TextContent, tt.to.Name))
			assert.Regexp(t, "/password-reset/.+/.+", msgs[0].TextContent)
		})
	}
}
