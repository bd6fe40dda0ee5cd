package cmd

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Laisky/kb-refresh/internal/library/archive"
	"github.com/Laisky/kb-refresh/internal/library/vault"
	gitlabDao "github.com/Laisky/kb-refresh/internal/web/gitlab/dao"
	"github.com/Laisky/kb-refresh/internal/web/gitlab/service"
	knowledgeDao "github.com/Laisky/kb-refresh/internal/web/knowledge/dao"
	"github.com/Laisky/kb-refresh/library/db/postgres"
	redisdb "github.com/Laisky/kb-refresh/library/db/redis"
)

func openDB(ctx context.Context) (*gorm.DB, error) {
	db, err := postgres.NewDB(ctx, postgres.DialInfo{
		Addr:   gconfig.Shared.GetString("settings.db.addr"),
		DBName: gconfig.Shared.GetString("settings.db.db"),
		User:   gconfig.Shared.GetString("settings.db.user"),
		Pwd:    gconfig.Shared.GetString("settings.db.pwd"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}

	return db, nil
}

func buildArchiveStore(ctx context.Context) (archive.Store, error) {
	if dir := gconfig.Shared.GetString("settings.archive.dir"); dir != "" {
		return archive.NewFSStore(dir), nil
	}

	cli, err := minio.New(gconfig.Shared.GetString("settings.archive.s3.endpoint"),
		&minio.Options{
			Creds: credentials.NewStaticV4(
				gconfig.Shared.GetString("settings.archive.s3.access_key"),
				gconfig.Shared.GetString("settings.archive.s3.secret"),
				"",
			),
			Secure: gconfig.Shared.GetBool("settings.archive.s3.secure"),
		})
	if err != nil {
		return nil, errors.Wrap(err, "new minio client")
	}

	return archive.NewMinioStore(cli, gconfig.Shared.GetString("settings.archive.s3.bucket")), nil
}

func buildRunLock() service.RunLock {
	addr := gconfig.Shared.GetString("settings.redis.addr")
	if addr == "" {
		return service.NewMemoryRunLock()
	}

	rdb := redisdb.NewDB(&redis.Options{
		Addr:     addr,
		DB:       gconfig.Shared.GetInt("settings.redis.db"),
		Password: gconfig.Shared.GetString("settings.redis.password"),
	})

	ttl := gconfig.Shared.GetDuration("settings.redis.lock_ttl")
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return service.NewRedisRunLock(rdb, ttl)
}

func buildService(ctx context.Context, db *gorm.DB) (*service.Service, error) {
	v, err := vault.New(gconfig.Shared.GetString("settings.vault.passphrase"))
	if err != nil {
		return nil, errors.Wrap(err, "open credential vault")
	}

	archives, err := buildArchiveStore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "build archive store")
	}

	svc, err := service.New(service.Config{
		Connections: gitlabDao.NewConnections(db),
		Runs:        gitlabDao.NewRuns(db),
		Store:       knowledgeDao.NewStore(db),
		Vault:       v,
		Archives:    archives,
		Lock:        buildRunLock(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "new refresh service")
	}

	return svc, nil
}
