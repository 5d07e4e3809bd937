package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/user"
	"github.com/trezcool/yuva/tests"
)

func Test_childApi(t *testing.T) {
	e := setup(t)

	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	teacher := e.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	mum := e.createUser(t, "Mum", "mum", user.RoleParent)
	dad := e.createUser(t, "Dad", "dad", user.RoleParent)

	amani := testutil.CreateChild(t, e.childRepo, "Amani", "Sunflowers", teacher.ID, mum.ID)
	baraka := testutil.CreateChild(t, e.childRepo, "Baraka", "Sunflowers", teacher.ID, dad.ID)

	runHTTPTests(t, e, []httpTest{
		{name: "Auth required", path: "/v1/children", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "employees see all", path: "/v1/children", token: getToken(t, e.conf, teacher), wantCode: http.StatusOK, wantData: marchallList(t, amani, baraka)},
		{name: "parents see their own", path: "/v1/children", token: getToken(t, e.conf, mum), wantCode: http.StatusOK, wantData: marchallList(t, amani)},
		{name: "own child", path: "/v1/children/" + amani.ID, token: getToken(t, e.conf, mum), wantCode: http.StatusOK, wantData: marchallObj(t, amani)},
		{
			name: "someone else's child", path: "/v1/children/" + baraka.ID, token: getToken(t, e.conf, mum),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "unknown child", path: "/v1/children/6f1c8f8e-0d1a-4a5e-9d51-3c1a8d6b1f00", token: getToken(t, e.conf, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "child not found"}),
		},
		{
			name: "only admins enroll", method: http.MethodPost, path: "/v1/children", token: getToken(t, e.conf, teacher),
			body: marchallObj(t, child.NewChild{Name: "Chiku", ClassName: "Tulips"}), wantCode: http.StatusForbidden,
		},
		{
			name: "required fields", method: http.MethodPost, path: "/v1/children", token: getToken(t, e.conf, admin),
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
		},
	})

	t.Run("enroll", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/children", getToken(t, e.conf, admin),
			marchallObj(t, child.NewChild{Name: " Chiku ", ClassName: "Tulips", TeacherID: teacher.ID, ParentIDs: []string{dad.ID}}))
		e.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var c child.Child
		unmarshall(t, rec, &c)
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, "Chiku", c.Name)
		assert.True(t, c.IsActive)
		assert.Equal(t, []string{dad.ID}, []string(c.ParentIDs))
	})
}
