package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jovas-007/Olap-practica-jovas/internal/repository"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Tabla derivada fact_clase_slot",
}

var slotsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Regenera los slots de 60 minutos a partir de fact_clase",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		res, err := repository.NewSlotRepo(db, logger, settings.ETL.SlotMinutes, settings.ETL.BatchSize).Refresh(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d slots generados a partir de %d hechos\n", res.Slots, res.Facts)
		return nil
	},
}

var slotsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Indica si la tabla de slots existe y si está al día",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		st, err := repository.NewSlotRepo(db, logger, settings.ETL.SlotMinutes, settings.ETL.BatchSize).Status(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !st.Available {
			fmt.Fprintln(out, "fact_clase_slot no existe: ejecute 'horarios migrate' y 'horarios slots refresh'")
			return nil
		}
		fmt.Fprintf(out, "filas: %d\n", st.Rows)
		fmt.Fprintf(out, "última carga: %s\n", stamp(st.LastLoad))
		fmt.Fprintf(out, "último recálculo: %s\n", stamp(st.LastRefresh))
		if st.Stale {
			fmt.Fprintln(out, "desactualizada: ejecute 'horarios slots refresh'")
		}
		return nil
	},
}

func stamp(t *time.Time) string {
	if t == nil {
		return "nunca"
	}
	return t.Local().Format(time.DateTime)
}

func init() {
	slotsCmd.AddCommand(slotsRefreshCmd, slotsStatusCmd)
}
