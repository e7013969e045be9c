package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/jovas-007/Olap-practica-jovas/internal/models"
)

// AutoMigrate crea el esquema estrella desde los modelos gorm. En Postgres se
// usan las migraciones SQL; esto sirve para SQLite en pruebas y desarrollo local.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.DimDocente{},
		&models.DimAsignatura{},
		&models.DimGrupo{},
		&models.DimTiempo{},
		&models.DimEspacio{},
		&models.FactClase{},
		&models.FactClaseSlot{},
		&models.EtlRun{},
	)
	if err != nil {
		return fmt.Errorf("error ejecutando migraciones: %w", err)
	}
	return nil
}
