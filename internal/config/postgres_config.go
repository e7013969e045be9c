package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrStoreUnavailable indica que el almacén no responde; ninguna escritura debe intentarse.
var ErrStoreUnavailable = errors.New("almacén de datos no disponible")

func NewPostgresDB(ctx context.Context, cfg DBConfig, verbose bool, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, StoreError(cfg, err)
	}

	// Configurar pool de conexiones
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error obteniendo DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, StoreError(cfg, err)
	}

	log.Info("conectado a PostgreSQL", zap.String("target", cfg.Target()))
	return db, nil
}

// StoreError envuelve un fallo de conexión con un mensaje claro para el operador.
func StoreError(cfg DBConfig, err error) error {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return fmt.Errorf("%w: no se pudo conectar a %s (revise host, puerto y credenciales): %v",
			ErrStoreUnavailable, cfg.Target(), connectErr.Unwrap())
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, cfg.Target(), err)
}
