package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/yuva/apps/api/echo"
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
	emailsvc "github.com/trezcool/yuva/services/email"
	"github.com/trezcool/yuva/services/filestore"
	"github.com/trezcool/yuva/services/instagram"
	logsvc "github.com/trezcool/yuva/services/logger"
	"github.com/trezcool/yuva/services/realtime"
	"github.com/trezcool/yuva/services/scheduler"
	"github.com/trezcool/yuva/storage/database"
	inmemdb "github.com/trezcool/yuva/storage/database/inmem"
	boiledrepos "github.com/trezcool/yuva/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/yuva/storage/database/sqlx"
)

type (
	Options struct {
		// InMemory keeps every record in process memory instead of postgres.
		InMemory bool
	}

	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// DBCloser releases the storage backend.
	DBCloser func() error

	Repositories struct {
		dig.Out
		Users         user.Repository
		Children      child.Repository
		Attendance    attendance.Repository
		CareLogs      carelog.Repository
		Announcements announcement.Repository
		Messages      message.Repository
		Calendar      calendar.Repository
		Appointments  appointment.Repository
		Fees          fee.Repository
		Transport     transport.Repository
		Incidents     incident.Repository
		Requests      request.Repository
		Tasks         task.Repository
		Menus         menu.Repository
		Duties        duty.Repository
		BranchReports branchreport.Repository
		Feed          feed.Repository
		Closer        DBCloser
	}

	serverParams struct {
		dig.In
		Conf            *core.Config
		Logger          core.Logger
		Translator      ut.Translator
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
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newSQLRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Users:         boiledrepos.NewUserRepository(db.DB),
		Children:      sqlxrepos.NewChildRepository(db),
		Attendance:    sqlxrepos.NewAttendanceRepository(db),
		CareLogs:      sqlxrepos.NewCarelogRepository(db),
		Announcements: sqlxrepos.NewAnnouncementRepository(db),
		Messages:      sqlxrepos.NewMessageRepository(db),
		Calendar:      sqlxrepos.NewCalendarRepository(db),
		Appointments:  sqlxrepos.NewAppointmentRepository(db),
		Fees:          sqlxrepos.NewFeeRepository(db),
		Transport:     sqlxrepos.NewTransportRepository(db),
		Incidents:     sqlxrepos.NewIncidentRepository(db),
		Requests:      sqlxrepos.NewRequestRepository(db),
		Tasks:         sqlxrepos.NewTaskRepository(db),
		Menus:         sqlxrepos.NewMenuRepository(db),
		Duties:        sqlxrepos.NewDutyRepository(db),
		BranchReports: sqlxrepos.NewBranchReportRepository(db),
		Feed:          sqlxrepos.NewFeedRepository(db),
		Closer:        db.Close,
	}
}

func newInMemRepositories() Repositories {
	db := inmemdb.Open()
	return Repositories{
		Users:         inmemdb.NewUserRepository(db),
		Children:      inmemdb.NewChildRepository(db),
		Attendance:    inmemdb.NewAttendanceRepository(db),
		CareLogs:      inmemdb.NewCarelogRepository(db),
		Announcements: inmemdb.NewAnnouncementRepository(db),
		Messages:      inmemdb.NewMessageRepository(db),
		Calendar:      inmemdb.NewCalendarRepository(db),
		Appointments:  inmemdb.NewAppointmentRepository(db),
		Fees:          inmemdb.NewFeeRepository(db),
		Transport:     inmemdb.NewTransportRepository(db),
		Incidents:     inmemdb.NewIncidentRepository(db),
		Requests:      inmemdb.NewRequestRepository(db),
		Tasks:         inmemdb.NewTaskRepository(db),
		Menus:         inmemdb.NewMenuRepository(db),
		Duties:        inmemdb.NewDutyRepository(db),
		BranchReports: inmemdb.NewBranchReportRepository(db),
		Feed:          inmemdb.NewFeedRepository(db),
		Closer:        db.Close,
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newFileStore(conf *core.Config) (core.FileStore, error) {
	var store core.FileStore
	switch conf.Storage.Backend {
	case "b2":
		b2Store, err := filestore.NewB2Store(context.Background(), conf)
		if err != nil {
			return nil, err
		}
		store = b2Store
	case "", "local":
		store = filestore.NewLocalStore(conf.Storage.LocalDir, conf.Storage.BaseURL)
	default:
		return nil, errors.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
	return filestore.NewThumbnailer(store, conf.Storage.ThumbnailWidth), nil
}

// newFeedSource returns nil when no instagram account is configured, which disables syncing.
func newFeedSource(conf *core.Config) feed.Source {
	client := instagram.NewClient(conf.Instagram)
	if !client.Configured() {
		return nil
	}
	return client
}

func newScheduler(
	conf *core.Config,
	logger core.Logger,
	appointmentSvc *appointment.Service,
	feeSvc *fee.Service,
	transportSvc *transport.Service,
	feedSvc *feed.Service,
) *scheduler.Scheduler {
	return scheduler.New(logger, scheduler.Jobs(conf, appointmentSvc, feeSvc, transportSvc, feedSvc)...)
}

func newServer(p serverParams) *echoapi.Server {
	var mediaDir string
	if p.Conf.Storage.Backend != "b2" {
		mediaDir = p.Conf.Storage.LocalDir
	}
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:            p.Conf,
		Logger:          p.Logger,
		Translator:      p.Translator,
		UserSvc:         p.UserSvc,
		ChildSvc:        p.ChildSvc,
		AttendanceSvc:   p.AttendanceSvc,
		CareLogSvc:      p.CareLogSvc,
		AnnouncementSvc: p.AnnouncementSvc,
		MessageSvc:      p.MessageSvc,
		CalendarSvc:     p.CalendarSvc,
		AppointmentSvc:  p.AppointmentSvc,
		FeeSvc:          p.FeeSvc,
		TransportSvc:    p.TransportSvc,
		IncidentSvc:     p.IncidentSvc,
		RequestSvc:      p.RequestSvc,
		TaskSvc:         p.TaskSvc,
		MenuSvc:         p.MenuSvc,
		DutySvc:         p.DutySvc,
		BranchReportSvc: p.BranchReportSvc,
		FeedSvc:         p.FeedSvc,
		Hub:             p.Hub,
		MediaDir:        mediaDir,
	})
}

// New returns a new dependency injection dig.Container
func New(opts Options) *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	if opts.InMemory {
		must(c.Provide(newInMemRepositories))
	} else {
		must(c.Provide(newDB))
		must(c.Provide(newSQLRepositories))
	}
	must(c.Provide(newEmailService))
	must(c.Provide(newFileStore))
	must(c.Provide(newFeedSource))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(realtime.NewHub))
	must(c.Provide(func(hub *realtime.Hub) core.Publisher { return hub }))

	must(c.Provide(user.NewService, dig.As(
		new(user.ServiceInterface),
		new(message.Directory),
		new(appointment.Directory),
		new(fee.Directory),
		new(transport.Directory),
		new(task.Directory),
		new(duty.Directory),
	)))
	must(c.Provide(child.NewService))
	must(c.Provide(func(svc *child.Service) child.Guard { return svc }))
	must(c.Provide(attendance.NewService))
	must(c.Provide(carelog.NewService))
	must(c.Provide(announcement.NewService))
	must(c.Provide(message.NewService))
	must(c.Provide(calendar.NewService))
	must(c.Provide(appointment.NewService))
	must(c.Provide(fee.NewService))
	must(c.Provide(transport.NewService))
	must(c.Provide(incident.NewService))
	must(c.Provide(request.NewService))
	must(c.Provide(task.NewService))
	must(c.Provide(menu.NewService))
	must(c.Provide(duty.NewService))
	must(c.Provide(branchreport.NewService))
	must(c.Provide(feed.NewService))

	must(c.Provide(newScheduler))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
