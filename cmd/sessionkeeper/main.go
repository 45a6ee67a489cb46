package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/rxdesk/sessionkeeper/internal/config"
	"github.com/rxdesk/sessionkeeper/keeper"
	"github.com/rxdesk/sessionkeeper/kvstore"
	"github.com/rxdesk/sessionkeeper/kvstore/filestore"
	"github.com/rxdesk/sessionkeeper/kvstore/redisstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running session keeper: %s\n", err)
	}
	log.Printf("Session keeper stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()
	c := config.New()
	logger := newLogger(c)
	displayAppname(c.GetAppName())

	store, closeStore, err := newStore(c, logger)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer closeStore()

	k, err := keeper.New(c, store, logger)
	if err != nil {
		return fmt.Errorf("keeper.New: %w", err)
	}

	k.Start()
	logger.Info().
		Dur("poll", c.GetPollInterval()).
		Dur("warning", c.GetWarningThreshold()).
		Dur("critical", c.GetCriticalThreshold()).
		Msg("session monitoring running")

	waitForStopSignal()
	k.Stop()
	return nil
}

func newLogger(c config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// newStore picks Redis when an address is configured, otherwise the
// local JSON file store.
func newStore(c config.Config, logger zerolog.Logger) (kvstore.Store, func(), error) {
	if addr := c.GetRedisAddr(); addr != "" {
		rs := redisstore.New(redisstore.Options{
			Addr:     addr,
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		}, logger)
		return rs, rs.Close, nil
	}

	fs, err := filestore.New(c.GetStorePath())
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {}, nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
