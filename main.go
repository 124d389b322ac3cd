package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quickbasket/quickbasket/config"
	"github.com/quickbasket/quickbasket/internal/adminapi"
	"github.com/quickbasket/quickbasket/internal/app"
	"github.com/quickbasket/quickbasket/internal/webserver"
)

var (
	h        bool
	showVer  bool
	initdb   bool
	conffile string
)

// set by the build
var (
	BuildVersion string
	ReleaseDate  string
)

func init() {
	flag.StringVar(&conffile, "c", "quickbasket.yml", "config file")
	flag.BoolVar(&h, "h", false, "help usage")
	flag.BoolVar(&showVer, "v", false, "show version")
	flag.BoolVar(&initdb, "initdb", false, "drop and recreate all tables, seed defaults")
}

func printVersion() {
	fmt.Fprintf(os.Stdout, "quickbasket %s (%s)\n", BuildVersion, ReleaseDate)
}

func main() {
	flag.Parse()
	if h {
		flag.Usage()
		return
	}
	if showVer {
		printVersion()
		return
	}

	cfg := config.LoadConfig(conffile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		webserver.Init(application)
		adminapi.InitRouter()
		return webserver.Start()
	})

	g.Go(func() error {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigc:
			return fmt.Errorf("received signal %s", sig)
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
	}
}
