package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/kartoza/solar-bmi/internal/config"
	"github.com/kartoza/solar-bmi/internal/logging"
	"github.com/kartoza/solar-bmi/internal/server"
)

var version = "dev"

func main() {
	fs := pflag.NewFlagSet("solar-bmi", pflag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	printConfig := fs.Bool("print-config", false, "Print the effective configuration and exit")
	showVersion := fs.Bool("version", false, "Show version and exit")
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("solar-bmi v%s\n", version)
		os.Exit(0)
	}

	log := logging.GetLogger()

	cfg, err := config.Load(*configPath, fs)
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	cfg.Version = version

	if *printConfig {
		out, err := cfg.YAML()
		if err != nil {
			log.WithError(err).Fatal("render configuration")
		}
		os.Stdout.Write(out)
		os.Exit(0)
	}

	if err := logging.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.WithError(err).Fatal("configure logging")
	}

	log.WithFields(logrus.Fields{
		"version": version,
		"service": cfg.Server.Service,
		"port":    cfg.Server.Port,
	}).Info("solar-bmi starting")

	srv, err := server.New(*cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to create server")
	}

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
		if err := srv.Stop(); err != nil {
			log.WithError(err).Error("error during shutdown")
		}
	}
}
