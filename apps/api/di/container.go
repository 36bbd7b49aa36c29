// Package di builds the API's dependency graph.
package di

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/myschool/myschool/apps/api/echo"
	"github.com/myschool/myschool/core"
	"github.com/myschool/myschool/core/fund"
	"github.com/myschool/myschool/core/preference"
	"github.com/myschool/myschool/core/sms"
	"github.com/myschool/myschool/core/staff"
	"github.com/myschool/myschool/core/student"
	"github.com/myschool/myschool/core/user"
	emailsvc "github.com/myschool/myschool/services/email"
	imghostsvc "github.com/myschool/myschool/services/imghost"
	logsvc "github.com/myschool/myschool/services/logger"
	smssvc "github.com/myschool/myschool/services/sms"
	"github.com/myschool/myschool/storage/database"
	inmemdb "github.com/myschool/myschool/storage/database/inmem"
	sqlxrepos "github.com/myschool/myschool/storage/database/sqlx"
	kvstore "github.com/myschool/myschool/storage/kv"
)

// engineMemory keeps everything in process memory. Data is lost on restart.
const engineMemory = "memory"

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Storage is the persistence layer selected by database.engine.
	Storage struct {
		dig.Out
		Users    user.Repository
		Students student.Repository
		Teachers staff.Repository
		Fund     fund.Repository
		Closer   Closer `name:"db"`
	}

	// KV is the key-value store: Redis when redis.address is set, process memory otherwise.
	KV struct {
		dig.Out
		Store  core.KVStore
		Closer Closer `name:"kv"`
	}

	ServerParams struct {
		dig.In
		Conf          *core.Config
		Logger        core.Logger
		UserSvc       user.Service
		StudentSvc    student.Service
		StaffSvc      staff.Service
		FundSvc       fund.Service
		SMSSvc        sms.Service
		SMSDesk       *sms.Desk
		PreferenceSvc preference.Service
		ImageHost     core.ImageHost
		Validate      *validator.Validate
		Translator    ut.Translator
	}

	// Closers are released when the application stops.
	Closers struct {
		dig.In
		DB Closer `name:"db"`
		KV Closer `name:"kv"`
	}

	Closer func() error
)

func nopCloser() error { return nil }

func newLogger(conf *core.Config) (*logsvc.RollbarLogger, core.Logger) {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger, logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) (Storage, error) {
	if conf.Database.Engine == engineMemory {
		loggerParam.Logger.Warn("using the in-memory database: data will be lost on shutdown")
		db := inmemdb.NewDB()
		return Storage{
			Users:    inmemdb.NewUserRepository(db),
			Students: inmemdb.NewStudentRepository(db),
			Teachers: inmemdb.NewTeacherRepository(db),
			Fund:     inmemdb.NewTransactionRepository(db),
			Closer:   nopCloser,
		}, nil
	}

	ctx := context.Background()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return Storage{}, errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return Storage{}, errors.Wrap(err, "opening database")
	}
	if err = database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return Storage{}, errors.Wrap(err, "migrating database")
	}
	loggerParam.Logger.Info(fmt.Sprintf("connected to %s", conf.Database.Address()))

	return Storage{
		Users:    sqlxrepos.NewUserRepository(db),
		Students: sqlxrepos.NewStudentRepository(db),
		Teachers: sqlxrepos.NewTeacherRepository(db),
		Fund:     sqlxrepos.NewTransactionRepository(db),
		Closer:   db.Close,
	}, nil
}

func newKV(conf *core.Config, logger core.Logger) (KV, error) {
	if conf.Redis.Address == "" {
		logger.Warn("redis.address not set: drafts and preferences are kept in memory")
		return KV{Store: kvstore.NewMemStore(), Closer: nopCloser}, nil
	}
	store, closeFn, err := kvstore.NewRedisStore(context.Background(), conf)
	if err != nil {
		return KV{}, err
	}
	return KV{Store: store, Closer: closeFn}, nil
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newSMSGateway(conf *core.Config, logger core.Logger) sms.Gateway {
	if conf.Debug {
		return smssvc.NewConsole(conf, logger)
	}
	return smssvc.NewBulkSMSBD(conf)
}

func newSMSService(gateway sms.Gateway, conf *core.Config, logger core.Logger) sms.Service {
	return sms.NewService(gateway, conf.SMS.Rate, logger)
}

// newDirectory resolves SMS recipients among the students.
func newDirectory(svc student.Service) sms.Directory {
	return svc
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		UserSvc:       p.UserSvc,
		StudentSvc:    p.StudentSvc,
		StaffSvc:      p.StaffSvc,
		FundSvc:       p.FundSvc,
		SMSSvc:        p.SMSSvc,
		SMSDesk:       p.SMSDesk,
		PreferenceSvc: p.PreferenceSvc,
		ImageHost:     p.ImageHost,
		Validate:      p.Validate,
		Translator:    p.Translator,
	})
}

// New returns a new dependency injection dig.Container.
// Providers run lazily, on the first Invoke that needs them.
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newKV))
	must(c.Provide(newEmailService))
	must(c.Provide(newSMSGateway))
	must(c.Provide(imghostsvc.NewImgBB))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))

	must(c.Provide(user.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(staff.NewService))
	must(c.Provide(fund.NewService))
	must(c.Provide(preference.NewService))
	must(c.Provide(newSMSService))
	must(c.Provide(newDirectory))
	must(c.Provide(sms.NewDraftStore))
	must(c.Provide(sms.NewDesk))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
