package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/appointment"
	"github.com/trezcool/yuva/core/child"
	"github.com/trezcool/yuva/core/fee"
	"github.com/trezcool/yuva/core/transport"
	"github.com/trezcool/yuva/core/user"
	emailsvc "github.com/trezcool/yuva/services/email"
	logsvc "github.com/trezcool/yuva/services/logger"
	"github.com/trezcool/yuva/storage/database"
	boiledrepos "github.com/trezcool/yuva/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/yuva/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	// mails are sent before the command returns
	conf.TestMode = true

	logger := logsvc.NewStdLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile))

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer db.Close()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	core.ParseEmailTemplates(conf, logger)

	validate := newValidator()
	usrRepo := boiledrepos.NewUserRepository(db.DB)
	usrSvc := user.NewService(usrRepo, mailSvc, validate, conf)
	childSvc := child.NewService(sqlxrepos.NewChildRepository(db), validate)

	// start CLI
	cli := commandLine{
		db:             db.DB,
		usrRepo:        usrRepo,
		transportSvc:   transport.NewService(sqlxrepos.NewTransportRepository(db), usrSvc, childSvc, core.NopPublisher, validate, conf),
		appointmentSvc: appointment.NewService(sqlxrepos.NewAppointmentRepository(db), usrSvc, childSvc, mailSvc, validate, conf),
		feeSvc:         fee.NewService(sqlxrepos.NewFeeRepository(db), childSvc, usrSvc, mailSvc, validate, conf),
		out:            os.Stdout,
		pollInterval:   conf.Tracking.PollInterval,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("\nerror: %s\n", err))
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}
