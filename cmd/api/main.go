package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/JackWithOneEye/hilbertchart/internal/config"
	"github.com/JackWithOneEye/hilbertchart/internal/database"
	"github.com/JackWithOneEye/hilbertchart/internal/demo"
	"github.com/JackWithOneEye/hilbertchart/internal/server"
)

func main() {
	ctx := context.Background()
	cfg := config.NewConfig()
	dbs := database.NewDatabaseService(cfg)
	defer dbs.Close()

	if err := seedDemo(ctx, dbs, cfg.Dataset()); err != nil {
		log.Fatalf("could not seed dataset: %s", err)
	}

	s := server.NewServer(cfg, dbs, ctx)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ListenAndServe()
	}()
	log.Printf("serving %s on %s", cfg.Dataset(), s.Addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	select {
	case err := <-errChan:
		log.Printf("could not serve: %v", err)
	case sig := <-sigChan:
		log.Printf("terminating: %v", sig)
	}

	ctx2, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	if err := s.Shutdown(ctx2); err != nil {
		log.Printf("could not shut down: %v", err)
	}
}

// seedDemo stores the demo dataset under name unless a dataset of that name
// exists.
func seedDemo(ctx context.Context, dbs database.DatabaseService, name string) error {
	_, err := dbs.GetDataset(ctx, name)
	if !errors.Is(err, database.ErrDatasetNotFound) {
		return err
	}
	log.Printf("seeding demo dataset %s", name)
	return dbs.WriteDataset(ctx, demo.Dataset(name))
}
