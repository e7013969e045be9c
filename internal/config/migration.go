package config

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/db"
)

// RunMigrations corre todas las migraciones pendientes del esquema estrella.
func RunMigrations(cfg DBConfig, log *zap.Logger) error {
	source, err := iofs.New(db.Migrations, db.MigrationsDir)
	if err != nil {
		return fmt.Errorf("leer migraciones embebidas: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.MigrateURL())
	if err != nil {
		return StoreError(cfg, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("aplicar migraciones: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info("migraciones aplicadas", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
