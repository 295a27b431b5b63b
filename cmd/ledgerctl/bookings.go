package main

import (
	"fmt"

	"github.com/spf13/cobra"

	bookingRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/booking"
	expireBookingsUC "github.com/m04kA/SMC-ReservationCore/internal/usecase/expire_bookings"
	"github.com/m04kA/SMC-ReservationCore/pkg/metrics"
)

func bookingsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Maintenance of bookings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "expire",
		Short: "Move pending bookings older than the configured TTL to expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			var noMetrics *metrics.Metrics
			uc, err := expireBookingsUC.NewUseCase(
				bookingRepo.NewRepository(e.wrappedDB()),
				noMetrics,
				e.cfg.Bookings.PendingTTL(),
				e.cfg.Bookings.SweepBatchSize,
				e.log,
			)
			if err != nil {
				return err
			}

			n, err := uc.Execute(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expired %d pending booking(s) older than %s\n", n, e.cfg.Bookings.PendingTTL())
			return nil
		},
	})

	return cmd
}
