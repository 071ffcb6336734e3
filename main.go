package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/zots0127/filehub/internal/adapter/handler"
	"github.com/zots0127/filehub/internal/domain/repository"
	sqliterepo "github.com/zots0127/filehub/internal/infrastructure/repository"
	"github.com/zots0127/filehub/internal/infrastructure/storage"
	"github.com/zots0127/filehub/internal/usecase"
	"github.com/zots0127/filehub/pkg/config"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	db, err := sqliterepo.OpenDB(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	blobs, err := newBlobStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize blob storage: ", err)
	}

	files := sqliterepo.NewFileRepository(db)
	refs := sqliterepo.NewReferenceRepository(db)
	dedup := usecase.NewDedupUseCase(files, refs, blobs)

	router := gin.Default()
	handler.NewFileHandler(dedup, cfg.API.Key).RegisterRoutes(router)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Starting server on %s (storage backend: %s)", addr, cfg.Storage.Backend)
	if err := router.Run(addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func newBlobStore(cfg *config.Config) (repository.BlobRepository, error) {
	if cfg.Storage.Backend == "s3" {
		return storage.NewS3Store(storage.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
	}
	return storage.NewLocalStore(cfg.Storage.Path)
}
