package main

import (
	"context"
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/smasonuk/parallax3d"
	"github.com/smasonuk/parallax3d/facetrack"
	"github.com/smasonuk/parallax3d/internal/logging"
	"github.com/smasonuk/parallax3d/tuning"
)

type config struct {
	Logging  logging.Config
	Camera   facetrack.Config
	Tuning   tuning.Config
	NoCamera bool   `env:"PARALLAX_NO_CAMERA" envDefault:"false"`
	Title    string `env:"PARALLAX_WINDOW_TITLE" envDefault:"parallax3d"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("could not load .env")
	}

	cfg, err := loadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger := logging.NewLogger(cfg.Logging)

	tunables := parallax3d.NewTunables()
	envTunables, err := parallax3d.LoadEnvTunables(tunables)
	if err != nil {
		logger.WithError(err).Fatal("invalid tunables in environment")
	}
	if file := envTunables.TunablesFile; file != "" {
		if err := parallax3d.LoadTunablesFile(tunables, file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.WithField("file", file).Info("no saved tunables yet")
			} else {
				logger.WithError(err).Warn("ignoring tunables file")
			}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	opts := []parallax3d.SessionOption{
		parallax3d.WithLogger(logger.WithField("component", "session")),
	}

	var pipeline *facetrack.Pipeline
	pipelineDone := make(chan struct{})
	if !cfg.NoCamera {
		pipeline, err = facetrack.Open(cfg.Camera, logger.WithField("component", "facetrack"))
		if err != nil {
			logger.WithError(err).Warn("face tracking unavailable, head offset is manual only")
			pipeline = nil
		}
	}
	if pipeline != nil {
		opts = append(opts, parallax3d.WithLandmarkSource(pipeline))
		go func() {
			defer close(pipelineDone)
			if err := pipeline.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Warn("face tracking stopped")
			}
		}()
	} else {
		close(pipelineDone)
	}

	session := parallax3d.NewSession(tunables, opts...)

	if cfg.Tuning.Enabled {
		srv := tuning.New(tunables, session.Readout, envTunables.TunablesFile, logger.WithField("component", "tuning"))
		go func() {
			if err := srv.Serve(ctx, cfg.Tuning.Addr); err != nil {
				logger.WithError(err).Error("tuning server stopped")
			}
		}()
	}

	game := parallax3d.NewGame(session, nil)
	runErr := parallax3d.Run(game, cfg.Title)

	cancel()
	<-pipelineDone
	if pipeline != nil {
		if err := pipeline.Close(); err != nil {
			logger.WithError(err).Warn("could not close face tracker")
		}
	}

	if runErr != nil {
		logger.WithError(runErr).Fatal("window closed with error")
	}
}
