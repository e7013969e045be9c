package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jovas-007/Olap-practica-jovas/internal/domain"
)

const (
	testPeriodo = "OTOÑO 2025"
	testPlan    = "SEMESTRAL"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func class(profesor, clave string, nrc int, day, edificio, salon, inicio, fin string) domain.ClassRecord {
	d, _ := domain.LookupWeekday(day)
	start, _ := domain.ParseClock(inicio)
	end, _ := domain.ParseClock(fin)
	return domain.ClassRecord{
		NRC:      nrc,
		Clave:    clave,
		Materia:  "Materia " + clave,
		Programa: "ITI",
		Seccion:  "01",
		Profesor: profesor,
		Edificio: edificio,
		Salon:    salon,
		Dia:      d,
		Inicio:   start,
		Fin:      end,
		Minutos:  start.MinutesUntil(end),
		Periodo:  testPeriodo,
		Plan:     testPlan,
	}
}

// lmv reproduce "Lopez Juan, CS101, LMV 07:00-08:30, A1/101".
func lmv(profesor, clave string, nrc int, edificio, salon, inicio, fin string) []domain.ClassRecord {
	var out []domain.ClassRecord
	for _, d := range []string{"L", "M", "V"} {
		out = append(out, class(profesor, clave, nrc, d, edificio, salon, inicio, fin))
	}
	return out
}

func loadRecords(t *testing.T, repo *WarehouseRepo, records []domain.ClassRecord) LoadResult {
	t.Helper()
	res, err := repo.Load(context.Background(), LoadRequest{
		Source:  "test",
		Records: records,
		Dims:    domain.Resolve(records),
		Read:    len(records),
	})
	require.NoError(t, err)
	return res
}
