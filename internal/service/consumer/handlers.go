package consumer

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jovas-007/Olap-practica-jovas/internal/service/etl"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/eventservice"
	"github.com/jovas-007/Olap-practica-jovas/internal/service/source"
)

var errNoKeys = errors.New("evento sin documentos")

func (l *Listener) handleScheduleUploaded(ctx context.Context, e eventservice.ScheduleUploadedEvent) error {
	if len(e.Keys) == 0 {
		return errNoKeys
	}
	log := l.log.With(zap.String("event_id", e.EventID), zap.Strings("keys", e.Keys))
	log.Info("procesando horarios subidos")

	records, err := l.extractor.Extract(ctx, e.Keys)
	if err != nil {
		return err
	}

	if l.stagingPath != "" {
		if err := source.WriteStagingFile(l.stagingPath, records); err != nil {
			log.Warn("no se pudo escribir staging", zap.Error(err))
		}
	}

	report, err := l.runner.Run(ctx, slices.Values(records), etl.RunOptions{
		Source:       "s3://" + e.Bucket + "/" + strings.Join(e.Keys, ","),
		RefreshSlots: e.RefreshSlots,
	})
	if err != nil {
		return err
	}
	log.Info("horarios cargados", zap.String("run_id", report.RunID.String()), zap.Int("hechos", report.Facts))
	return nil
}
