package backends

import (
	"fmt"

	"github.com/cschleiden/go-workflows/backend"
	"github.com/cschleiden/go-workflows/backend/mysql"
	redisbackend "github.com/cschleiden/go-workflows/backend/redis"
	"github.com/cschleiden/go-workflows/backend/sqlite"
	redisv9 "github.com/redis/go-redis/v9"

	"github.com/cschleiden/resume-publisher/internal/config"
)

// New creates the workflow backend selected by the configuration. The API
// and worker processes must point at the same backing store (same sqlite
// file, or the same mysql/redis server) to share workflow state.
func New(cfg config.Config, opt ...backend.BackendOption) (backend.Backend, error) {
	switch cfg.Backend {
	case "memory":
		return sqlite.NewInMemoryBackend(sqlite.WithBackendOptions(opt...)), nil

	case "sqlite":
		return sqlite.NewSqliteBackend(cfg.BackendSqlitePath, sqlite.WithBackendOptions(opt...)), nil

	case "mysql":
		return mysql.NewMysqlBackend(
			cfg.MysqlHost, cfg.MysqlPort, cfg.MysqlUser, cfg.MysqlPassword, cfg.MysqlDatabase,
			mysql.WithBackendOptions(opt...)), nil

	case "redis":
		rclient := redisv9.NewUniversalClient(&redisv9.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
		})

		return redisbackend.NewRedisBackend(rclient, redisbackend.WithBackendOptions(opt...))

	default:
		return nil, fmt.Errorf("unknown workflow backend %q", cfg.Backend)
	}
}
