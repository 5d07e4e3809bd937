package tests

import (
	"net/http"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/apps/api/echo"
	"github.com/trezcool/yuva/core/appointment"
	"github.com/trezcool/yuva/core/user"
	"github.com/trezcool/yuva/tests"
)

func Test_appointmentApi_sendReminder(t *testing.T) {
	e := setup(t)

	teacher := e.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	mum := e.createUser(t, "Mum", "mum", user.RoleParent)
	dad := e.createUser(t, "Dad", "dad", user.RoleParent)
	retired := testutil.CreateUser(t, e.usrRepo, "Retired", "retired", "retired@test.cd", "", []string{user.RoleTeacher}, false)

	date := time.Date(2030, time.March, 4, 9, 30, 0, 0, time.UTC)
	reminder := func(recipientID string) []byte {
		return marchallObj(t, appointment.ReminderRequest{
			RecipientID:        recipientID,
			AppointmentSubject: "Progress review",
			Message:            "See you soon",
			AppointmentDate:    date,
		})
	}
	sent := marchallObj(t, echoapi.SuccessResponse{Success: "Reminder sent."})

	tests := []struct {
		httpTest
		to *mail.Address
	}{
		{httpTest: httpTest{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}},
		{httpTest: httpTest{name: "required fields", token: getToken(t, e.conf, mum), body: []byte(`{}`), wantCode: http.StatusBadRequest}},
		{
			httpTest: httpTest{
				name: "unknown recipient", token: getToken(t, e.conf, mum), body: reminder(retired.ID),
				wantCode: http.StatusBadRequest, wantData: []byte(`{"recipient_id": "unknown recipient"}`),
			},
		},
		{
			httpTest: httpTest{
				name: "parents only remind personnel", token: getToken(t, e.conf, mum), body: reminder(dad.ID),
				wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
			},
		},
		{
			httpTest: httpTest{name: "parent to teacher", token: getToken(t, e.conf, mum), body: reminder(teacher.ID), wantCode: http.StatusOK, wantData: sent},
			to:       &mail.Address{Name: teacher.Name, Address: teacher.Email},
		},
		{
			httpTest: httpTest{name: "teacher to parent", token: getToken(t, e.conf, teacher), body: reminder(dad.ID), wantCode: http.StatusOK, wantData: sent},
			to:       &mail.Address{Name: dad.Name, Address: dad.Email},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.mail.Reset()

			req, rec := newAuthRequest(http.MethodPost, "/v1/functions/send-appointment-reminder", tt.token, tt.body)
			e.serve(req, rec)
			checkCodeAndData(t, tt.httpTest, rec)

			msgs := e.mail.Messages()
			if tt.to == nil {
				assert.Empty(t, msgs)
				return
			}
			require.Len(t, msgs, 1)
			assert.Equal(t, *tt.to, msgs[0].To[0])
			assert.Contains(t, msgs[0].Subject, "Progress review")
			assert.True(t, strings.Contains(msgs[0].TextContent, "See you soon"))
		})
	}
}

func Test_appointmentApi_lifecycle(t *testing.T) {
	e := setup(t)

	teacher := e.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	mum := e.createUser(t, "Mum", "mum", user.RoleParent)
	dad := e.createUser(t, "Dad", "dad", user.RoleParent)

	req, rec := newAuthRequest(http.MethodPost, "/v1/appointments", getToken(t, e.conf, mum), marchallObj(t, appointment.NewAppointment{
		RecipientID: teacher.ID,
		Subject:     "Settling in",
		ScheduledAt: time.Now().Add(48 * time.Hour).UTC(),
	}))
	e.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var appt appointment.Appointment
	unmarshall(t, rec, &appt)
	assert.Equal(t, "pending", appt.Status)

	runHTTPTests(t, e, []httpTest{
		{name: "hidden from outsiders", path: "/v1/appointments/" + appt.ID, token: getToken(t, e.conf, dad), wantCode: http.StatusNotFound},
		{name: "unknown", path: "/v1/appointments/6f1c8f8e-0d1a-4a5e-9d51-3c1a8d6b1f00", token: getToken(t, e.conf, mum), wantCode: http.StatusNotFound},
		{
			name: "requester cannot approve", method: http.MethodPost, path: "/v1/appointments/" + appt.ID + "/transition",
			token: getToken(t, e.conf, mum), body: marchallObj(t, appointment.Transition{Status: "approved"}), wantCode: http.StatusForbidden,
		},
		{
			name: "recipient approves", method: http.MethodPost, path: "/v1/appointments/" + appt.ID + "/transition",
			token: getToken(t, e.conf, teacher), body: marchallObj(t, appointment.Transition{Status: "approved", Note: "ok"}), wantCode: http.StatusOK,
		},
	})
}
