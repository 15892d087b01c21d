package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/2beens/fittrack/internal/backup"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/logging"
	"github.com/2beens/fittrack/internal/storage"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	credentialsFile := flag.String("gd-creds", "", "google drive service account credentials json")
	outFile := flag.String("out", "", "also write the snapshot to this local file")
	restoreFile := flag.String("restore", "", "restore the store from this local snapshot file instead of backing up")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	closeLogs := logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})
	defer closeLogs()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	backend, err := storage.Open(ctx, storage.OpenParams{
		Config:           cfg,
		RedisPassword:    os.Getenv("FITTRACK_REDIS_PASS"),
		PostgresUser:     os.Getenv("FITTRACK_POSTGRES_USER"),
		PostgresPassword: os.Getenv("FITTRACK_POSTGRES_PASS"),
	})
	if err != nil {
		log.Fatalf("open store: %s", err)
	}
	defer backend.Close()

	if *restoreFile != "" {
		if err := restore(ctx, backend.Store, *restoreFile); err != nil {
			log.Errorf("restore failed: %s", err)
			return
		}
		log.Infof("store restored from %s", *restoreFile)
		return
	}

	log.Println("starting fittrack backup ...")

	snapshot, err := backup.TakeSnapshot(ctx, backend.Store, time.Now())
	if err != nil {
		log.Errorf("take snapshot: %s", err)
		return
	}
	log.Infof("snapshot taken, %d entries", len(snapshot.Entries))

	if *outFile != "" {
		data, err := snapshot.Marshal()
		if err != nil {
			log.Errorf("marshal snapshot: %s", err)
			return
		}
		if err := os.WriteFile(*outFile, data, 0o600); err != nil {
			log.Errorf("write snapshot file: %s", err)
			return
		}
		log.Infof("snapshot written to %s", *outFile)
	}

	if *credentialsFile == "" {
		log.Warnln("google drive credentials json not specified, skipping upload")
		return
	}

	credentialsFileBytes, err := os.ReadFile(*credentialsFile)
	if err != nil {
		log.Errorf("unable to read credentials file: %s", err)
		return
	}

	uploader, err := backup.NewDriveUploader(ctx, credentialsFileBytes)
	if err != nil {
		log.Errorf("failed to create google drive uploader: %s", err)
		return
	}

	if _, err := uploader.Upload(ctx, snapshot); err != nil {
		log.Errorf("%+v", err)
	}
}

func restore(ctx context.Context, store storage.Store, path string) error {
	if exists, err := pkg.PathExists(path, false); err != nil || !exists {
		log.Errorf("snapshot file [%s] not found: %v", path, err)
		return os.ErrNotExist
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	snapshot, err := backup.Unmarshal(data)
	if err != nil {
		return err
	}
	return backup.Restore(ctx, store, snapshot)
}
