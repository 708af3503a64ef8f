package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carbon-X-DAO/AvatarMix/catalog"
	"github.com/Carbon-X-DAO/AvatarMix/config"
	"github.com/Carbon-X-DAO/AvatarMix/editor"
	fileserver "github.com/Carbon-X-DAO/AvatarMix/fileserver"
	_ "github.com/lib/pq"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"

	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	cfg, err := config.ParseEnv()
	if err != nil {
		log.Fatalf("failed to read configuration: %s", err)
	}

	flag.StringVar(&cfg.Address, "address", cfg.Address, "address on which to listen")
	flag.StringVar(&cfg.AssetRoot, "assets", cfg.AssetRoot, "directory holding one sub-directory of images per slice")
	flag.IntVar(&cfg.Size, "size", cfg.Size, "width and height of the composite in pixels")
	flag.DurationVar(&cfg.LoadTimeout, "load-timeout", cfg.LoadTimeout, "how long to wait for the asset catalog to load")
	flag.StringVar(&cfg.CertFile, "cert", cfg.CertFile, "TLS certificate file")
	flag.StringVar(&cfg.KeyFile, "key", cfg.KeyFile, "TLS certificate signing key file")
	flag.StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "postgres URL for the export log, empty to disable")
	flag.Parse()

	db := openExportLog(cfg)

	log.Printf("loading assets from %s", cfg.AssetRoot)
	ed := editor.New(catalog.NewLoader(catalog.DirSource{Root: cfg.AssetRoot}, cfg.Size), editor.Options{
		Size:        cfg.Size,
		LoadTimeout: cfg.LoadTimeout,
		Flash:       cfg.Flash,
	})
	ed.Start(context.Background())

	var tlsConfig *tls.Config
	if cfg.TLS() {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			log.Fatalf("failed to load key pair: %s and %s: %s", cfg.CertFile, cfg.KeyFile, err)
		}
		tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
		}
	}

	srv, err := fileserver.New(cfg.Address, cfg.AssetRoot, tlsConfig, db, ed)
	if err != nil {
		log.Fatalf("failed to create server: %s", err)
	}

	killed := make(chan os.Signal, 1)
	signal.Notify(killed, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	serverShutdown := make(chan bool)

	go func() {
		sig := <-killed
		log.Printf("received signal to shutdown: %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("failed to shutdown server: %s", err)
		}
		cancel()
		close(serverShutdown)
	}()

	log.Printf("starting the web server on address %s", cfg.Address)
	if err := srv.Listen(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("failed to serve: %s", err)
	}

	<-serverShutdown
	log.Printf("server has shut down... Exiting.")
}

// openExportLog connects to postgres and applies migrations. It returns nil
// when no database is configured.
func openExportLog(cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		log.Printf("no database configured, exports will not be recorded")
		return nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to initialize a postgres instance: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to connect to the postgres instance: %s", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatalf("failed to obtain postgres driver for migrations: %s", err)
	}

	// apply migrations
	m, err := migrate.NewWithDatabaseInstance(cfg.Migrations, "postgres", driver)
	if err != nil {
		log.Fatalf("failed to initialize a migrate driver instance: %s", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("failed to apply all migrations: %s", err)
	}

	return db
}
