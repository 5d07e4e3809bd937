package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

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
	"github.com/trezcool/yuva/services/realtime"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Translator ut.Translator

		UserSvc         user.ServiceInterface
		ChildSvc        *child.Service
		AttendanceSvc   *attendance.Service
		CareLogSvc      *carelog.Service
		AnnouncementSvc *announcement.Service
		MessageSvc      *message.Service
		CalendarSvc     *calendar.Service
		AppointmentSvc  *appointment.Service
		FeeSvc          *fee.Service
		TransportSvc    *transport.Service
		IncidentSvc     *incident.Service
		RequestSvc      *request.Service
		TaskSvc         *task.Service
		MenuSvc         *menu.Service
		DutySvc         *duty.Service
		BranchReportSvc *branchreport.Service
		FeedSvc         *feed.Service
		Hub             *realtime.Hub

		// MediaDir is served under /media when files are stored locally.
		MediaDir string
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		auth     *authenticator
		shutdown chan os.Signal
		errors   chan error
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf, deps.UserSvc),
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORS())

	s.app.GET("/", home)
	if s.deps.MediaDir != "" {
		s.app.Static("/media", s.deps.MediaDir)
	}

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig("header:" + echo.HeaderAuthorization))
	authed := v1.Group("", jwt, s.auth.actorMiddleware)

	registerUserAPI(v1, jwt, s.deps.UserSvc, s.auth)
	registerChildAPI(authed, s.deps.ChildSvc)
	registerAttendanceAPI(authed, s.deps.AttendanceSvc)
	registerCareLogAPI(authed, s.deps.CareLogSvc)
	registerAnnouncementAPI(authed, s.deps.AnnouncementSvc)
	registerMessageAPI(authed, s.deps.MessageSvc)
	registerCalendarAPI(authed, s.deps.CalendarSvc)
	registerAppointmentAPI(authed, s.deps.AppointmentSvc)
	registerFeeAPI(authed, s.deps.FeeSvc)
	registerTransportAPI(authed, s.deps.TransportSvc)
	registerIncidentAPI(authed, s.deps.IncidentSvc)
	registerRequestAPI(authed, s.deps.RequestSvc)
	registerTaskAPI(authed, s.deps.TaskSvc)
	registerMenuAPI(authed, s.deps.MenuSvc)
	registerDutyAPI(authed, s.deps.DutySvc)
	registerBranchReportAPI(authed, s.deps.BranchReportSvc)
	registerFeedAPI(authed, s.deps.FeedSvc)

	if s.deps.Hub != nil {
		wsJWT := middleware.JWTWithConfig(s.auth.jwtConfig("query:token"))
		v1.GET("/realtime", realtimeHandler(s.deps.Hub), wsJWT, s.auth.actorMiddleware)
	}
}

// Start listens until the server is shut down. Failures are sent to Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Yuva API!")
}
