package tests

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/fee"
	"github.com/trezcool/yuva/core/user"
	"github.com/trezcool/yuva/tests"
)

func Test_feeApi(t *testing.T) {
	e := setup(t)

	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	teacher := e.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	mum := e.createUser(t, "Mum", "mum", user.RoleParent)
	dad := e.createUser(t, "Dad", "dad", user.RoleParent)
	amani := testutil.CreateChild(t, e.childRepo, "Amani", "Sunflowers", teacher.ID, mum.ID)

	adminToken := getToken(t, e.conf, admin)

	req, rec := newAuthRequest(http.MethodPost, "/v1/fees/bulk", adminToken, marchallObj(t, fee.BulkFee{
		ChildID:      amani.ID,
		PaymentType:  "tuition",
		Months:       []string{"January", "February", "March"},
		Amount:       150,
		FirstDueDate: core.NewDate(2030, time.January, 5),
	}))
	e.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var fees []fee.Fee
	unmarshall(t, rec, &fees)
	require.Len(t, fees, 3)

	runHTTPTests(t, e, []httpTest{
		{name: "employees have no access", path: "/v1/fees", token: getToken(t, e.conf, teacher), wantCode: http.StatusForbidden},
		{name: "parents see their children's", path: "/v1/fees", token: getToken(t, e.conf, mum), wantCode: http.StatusOK, wantData: marchallObj(t, fees)},
		{name: "other parents see nothing", path: "/v1/fees", token: getToken(t, e.conf, dad), wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "hidden from other parents", path: "/v1/fees/" + fees[0].ID, token: getToken(t, e.conf, dad), wantCode: http.StatusNotFound},
		{
			name: "only admins create", method: http.MethodPost, path: "/v1/fees", token: getToken(t, e.conf, mum),
			body:     marchallObj(t, fee.NewFee{ChildID: amani.ID, PaymentType: "meal", Month: "May", Amount: 10, DueDate: core.NewDate(2030, time.May, 1)}),
			wantCode: http.StatusForbidden,
		},
		{
			name: "mark paid", method: http.MethodPost, path: "/v1/fees/" + fees[0].ID + "/transition", token: adminToken,
			body: marchallObj(t, fee.Transition{Status: "paid"}), wantCode: http.StatusOK,
		},
	})

	t.Run("summary", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/fees/summary", adminToken)
		e.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var sum fee.Summary
		unmarshall(t, rec, &sum)
		assert.Equal(t, fee.StatusTotal{Count: 3, Amount: 450}, sum.Total)
		assert.Equal(t, fee.StatusTotal{Count: 1, Amount: 150}, sum.ByStatus[fee.StatusPaid])
		assert.Equal(t, fee.StatusTotal{Count: 2, Amount: 300}, sum.ByStatus[fee.StatusPending])
	})

	t.Run("export", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/fees/export?status=pending", adminToken)
		e.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment;")

		xlsx, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = xlsx.Close() }()
		rows, err := xlsx.GetRows("Sheet1")
		require.NoError(t, err)
		require.Len(t, rows, 3) // header + 2 pending fees
		assert.Equal(t, "Child", rows[0][0])
		assert.Equal(t, "Amani", rows[1][0])
	})

	t.Run("payment reminder", func(t *testing.T) {
		e.mail.Reset()
		req, rec := newAuthRequest(http.MethodPost, "/v1/fees/"+fees[1].ID+"/reminders", adminToken, []byte(`{"message": "Friendly reminder"}`))
		e.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var rems []fee.PaymentReminder
		unmarshall(t, rec, &rems)
		require.Len(t, rems, 1)
		assert.Equal(t, mum.ID, rems[0].ParentID)

		msgs := e.mail.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, mum.Email, msgs[0].To[0].Address)
	})
}

func Test_feedApi(t *testing.T) {
	e := setup(t)

	admin := e.createUser(t, "Admin", "admin", user.RoleAdmin)
	parent := e.createUser(t, "Parent", "parent", user.RoleParent)

	runHTTPTests(t, e, []httpTest{
		{name: "anyone reads the feed", path: "/v1/feed", token: getToken(t, e.conf, parent), wantCode: http.StatusOK, wantData: marchallList(t)},
		{name: "only admins sync", method: http.MethodPost, path: "/v1/feed/sync", token: getToken(t, e.conf, parent), wantCode: http.StatusForbidden},
		{
			name: "no source configured", method: http.MethodPost, path: "/v1/feed/sync", token: getToken(t, e.conf, admin),
			wantCode: http.StatusServiceUnavailable, wantData: marchallObj(t, httpErr{Error: "feed source is not configured"}),
		},
	})
}
