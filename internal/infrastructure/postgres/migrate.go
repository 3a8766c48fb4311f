package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/jhoicas/facturacion-api/pkg/config"
)

// Migrate aplica las migraciones pendientes del directorio configurado.
// Sin cambios pendientes no es error.
func Migrate(cfg config.DBConfig) error {
	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("abrir migraciones: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("aplicar migraciones: %w", err)
	}
	return nil
}
