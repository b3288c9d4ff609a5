// Package daemon runs the gridsense measurement service: it owns the loaded
// dataset, re-runs the estimation on a timer and serves results over an HTTP
// API on a unix socket.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gridsense/gridsense/pkg/calibration"
	"github.com/gridsense/gridsense/pkg/config"
	"github.com/gridsense/gridsense/pkg/events"
)

var (
	conf          config.Config
	hub           = events.NewHub()
	sigmaRecorder = calibration.NewRecorder(256)
	state         = newRunState()
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", getStatus)
	router.GET("/nodes", getNodes)
	router.PUT("/nodes/:id/energized", setNodeEnergized)
	router.GET("/sensors", getSensors)
	router.GET("/sensors/:id/param", getSensorParam)
	router.POST("/estimate", runEstimation)
	router.GET("/outputs", getOutputs)
	router.GET("/solution", getSolution)
	router.PUT("/dataset", reloadDataset)
	router.GET("/calibration", getCalibration)
	router.GET("/events", getEvents)
	router.GET("/version", getVersion)

	return router
}

func Run(configPath string, unixSocketPath string, allowNonRoot bool) error {
	router := setupRoutes()

	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config and dataset
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
			if err := state.loadDataset(conf.DatasetPath()); err != nil {
				logrus.Errorf("failed to reload dataset: %v", err)
			}
		}
	}()

	if err := state.loadDataset(conf.DatasetPath()); err != nil {
		// The daemon stays up so the dataset can be fixed and reloaded
		// over the API.
		logrus.Errorf("failed to load dataset: %v", err)
	}

	srv := &http.Server{
		Handler: router,
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	stopLoop := make(chan struct{})
	go func() {
		logrus.Debugln("estimation loop starts")

		infiniteLoop(stopLoop)

		logrus.Debugln("estimation loop exited")
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	close(stopLoop)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(ctx)
	if err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("exiting")
	return nil
}
