// Package configurator wires the turbo-keys services together: logging,
// settings, the badger bookkeeping store and the HID service.
package configurator

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/sstallion/go-hid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BenGWeeks/turbo-keys/internal/configsvc"
	"github.com/BenGWeeks/turbo-keys/internal/hidsvc"
	"github.com/BenGWeeks/turbo-keys/pkg/keypad"
)

type App struct {
	config   Config
	settings configsvc.Settings

	log    *zap.Logger
	db     *badger.DB
	hidSvc *hidsvc.Service
}

func New(config Config) (*App, error) {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !config.Debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	settings, err := configsvc.Load(config.SettingsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize hidapi: %w", err)
	}

	dbOptions := badger.DefaultOptions(filepath.Join(config.DataDir, "db"))
	dbOptions.Logger = &badgerLogger{l: logger.Named("badger")}
	db, err := badger.Open(dbOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	hidSvc := hidsvc.New(db, logger.Named("hid"), time.Now,
		hidsvc.WithDeviceFilter(settings.VendorID, settings.ProductIDs))

	return &App{
		config:   config,
		settings: settings,
		log:      logger,
		db:       db,
		hidSvc:   hidSvc,
	}, nil
}

func (a *App) Log() *zap.Logger {
	return a.log
}

func (a *App) HID() *hidsvc.Service {
	return a.hidSvc
}

func (a *App) Settings() configsvc.Settings {
	return a.settings
}

// OpenSession opens the keypad's configuration interface and runs dialect
// detection. The caller must close the session.
func (a *App) OpenSession() (*keypad.Session, hidsvc.DeviceInfo, error) {
	tr, info, err := a.hidSvc.Open()
	if err != nil {
		return nil, hidsvc.DeviceInfo{}, err
	}
	session := keypad.Open(a.log.Named("keypad"), tr,
		keypad.WithFrameDelay(time.Duration(a.settings.FrameDelayMs)*time.Millisecond))
	return session, info, nil
}

func (a *App) Close() error {
	err := a.db.Close()
	hid.Exit()
	a.log.Sync()
	if err != nil {
		return fmt.Errorf("failed to close db: %w", err)
	}
	return nil
}

type badgerLogger struct {
	l *zap.Logger
}

func (l badgerLogger) Errorf(msg string, args ...any) {
	l.l.Error(fmt.Sprintf(msg, args...))
}

func (l badgerLogger) Warningf(msg string, args ...any) {
	l.l.Warn(fmt.Sprintf(msg, args...))
}

func (l badgerLogger) Infof(msg string, args ...any) {
	l.l.Debug(fmt.Sprintf(msg, args...))
}

func (l badgerLogger) Debugf(msg string, args ...any) {
	l.l.Debug(fmt.Sprintf(msg, args...))
}
