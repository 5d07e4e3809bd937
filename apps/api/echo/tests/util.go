package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/yuva/apps/api/echo"
	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/announcement"
	"github.com/trezcool/yuva/core/appointment"
	"github.com/trezcool/yuva/core/attendance"
	"github.com/trezcool/yuva/core/branchreport"
	"github.com/trezcool/yuva/core/calendar"
	"github.com/trezcool/yuva/core/carelog"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/duty"
	"github.com/trezcool/yuva/core/fee"
	"github.com/trezcool/yuva/core/feed"
	"github.com/trezcool/yuva/core/incident"
	"github.com/trezcool/yuva/core/menu"
	"github.com/trezcool/yuva/core/message"
	"github.com/trezcool/yuva/core/request"
	"github.com/trezcool/yuva/core/task"
	"github.com/trezcool/yuva/core/transport"
	"github.com/trezcool/yuva/core/user"
	"github.com/trezcool/yuva/services/email"
	"github.com/trezcool/yuva/services/filestore"
	"github.com/trezcool/yuva/services/logger"
	"github.com/trezcool/yuva/services/realtime"
	"github.com/trezcool/yuva/storage/database/inmem"
	"github.com/trezcool/yuva/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// env is a server backed by in-memory repositories.
type env struct {
	conf      *core.Config
	app       *Server
	db        *inmemdb.DB
	mail      *emailsvc.ConsoleServiceMock
	hub       *realtime.Hub
	mediaDir  string
	usrRepo   user.Repository
	childRepo child.Repository
}

func setup(t *testing.T) *env {
	conf := core.NewTestConfig()
	logger := logsvc.NewStdLogger(log.New(os.Stderr, "API : ", log.LstdFlags))
	translator := core.NewTranslator()
	validate := testutil.NewValidator()

	db := inmemdb.Open()
	e := &env{
		conf:      conf,
		db:        db,
		mail:      emailsvc.NewConsoleServiceMock(),
		hub:       realtime.NewHub(logger),
		mediaDir:  t.TempDir(),
		usrRepo:   inmemdb.NewUserRepository(db),
		childRepo: inmemdb.NewChildRepository(db),
	}

	usrSvc := user.NewService(e.usrRepo, e.mail, validate, conf)
	childSvc := child.NewService(e.childRepo, validate)
	files := filestore.NewThumbnailer(filestore.NewLocalStore(e.mediaDir, "/media"), conf.Storage.ThumbnailWidth)

	e.app = NewServer(ServerDeps{
		Conf:            conf,
		Logger:          logger,
		Translator:      translator,
		UserSvc:         usrSvc,
		ChildSvc:        childSvc,
		AttendanceSvc:   attendance.NewService(inmemdb.NewAttendanceRepository(db), childSvc, validate),
		CareLogSvc:      carelog.NewService(inmemdb.NewCarelogRepository(db), childSvc, files, validate),
		AnnouncementSvc: announcement.NewService(inmemdb.NewAnnouncementRepository(db), e.hub, validate),
		MessageSvc:      message.NewService(inmemdb.NewMessageRepository(db), usrSvc, e.hub, validate),
		CalendarSvc:     calendar.NewService(inmemdb.NewCalendarRepository(db), validate),
		AppointmentSvc:  appointment.NewService(inmemdb.NewAppointmentRepository(db), usrSvc, childSvc, e.mail, validate, conf),
		FeeSvc:          fee.NewService(inmemdb.NewFeeRepository(db), childSvc, usrSvc, e.mail, validate, conf),
		TransportSvc:    transport.NewService(inmemdb.NewTransportRepository(db), usrSvc, childSvc, e.hub, validate, conf),
		IncidentSvc:     incident.NewService(inmemdb.NewIncidentRepository(db), childSvc, validate),
		RequestSvc:      request.NewService(inmemdb.NewRequestRepository(db), childSvc, e.hub, validate),
		TaskSvc:         task.NewService(inmemdb.NewTaskRepository(db), usrSvc, validate),
		MenuSvc:         menu.NewService(inmemdb.NewMenuRepository(db), validate),
		DutySvc:         duty.NewService(inmemdb.NewDutyRepository(db), usrSvc, validate),
		BranchReportSvc: branchreport.NewService(inmemdb.NewBranchReportRepository(db), childSvc, validate),
		FeedSvc:         feed.NewService(inmemdb.NewFeedRepository(db), nil),
		Hub:             e.hub,
		MediaDir:        e.mediaDir,
	})
	return e
}

func (e *env) createUser(t *testing.T, name, uname string, roles ...string) user.User {
	return testutil.CreateUser(t, e.usrRepo, name, uname, uname+"@test.cd", "Passw0rd", roles, true)
}

func (e *env) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	e.app.ServeHTTP(rec, req)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := GenerateToken(conf, NewClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, e *env, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			e.serve(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}
