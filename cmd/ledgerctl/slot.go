package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-ReservationCore/internal/infra/catalog"
	capacityRepo "github.com/m04kA/SMC-ReservationCore/internal/infra/storage/capacity"
	capacityService "github.com/m04kA/SMC-ReservationCore/internal/service/capacity"
	"github.com/m04kA/SMC-ReservationCore/internal/service/capacity/models"
	pricingService "github.com/m04kA/SMC-ReservationCore/internal/service/pricing"
)

func slotCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Inspect and provision capacity slots",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [tripId] [date] [mode]",
		Short: "Show capacity and taken seats of a slot",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCapacityService(*configPath, func(svc *capacityService.Service) error {
				slot, err := svc.GetSlot(cmd.Context(), args[0], args[1], args[2])
				if err != nil {
					return err
				}
				printSlot(cmd.OutOrStdout(), slot)
				return nil
			})
		},
	})

	var capacity int
	provision := &cobra.Command{
		Use:   "provision [tripId] [date] [mode]",
		Short: "Set slot capacity (never below seats already taken)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCapacityService(*configPath, func(svc *capacityService.Service) error {
				slot, err := svc.Provision(cmd.Context(), args[0], args[1], args[2], capacity)
				if err != nil {
					return err
				}
				printSlot(cmd.OutOrStdout(), slot)
				return nil
			})
		},
	}
	provision.Flags().IntVar(&capacity, "capacity", 0, "New slot capacity")
	_ = provision.MarkFlagRequired("capacity")
	cmd.AddCommand(provision)

	return cmd
}

func withCapacityService(configPath string, fn func(svc *capacityService.Service) error) error {
	e, err := openEnv(configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	c, err := catalog.LoadFile(e.cfg.Catalog.Path)
	if err != nil {
		return err
	}
	pricing := pricingService.NewService(catalog.NewStore(c), e.cfg.Bookings.DefaultCapacity, e.log)
	svc := capacityService.NewService(capacityRepo.NewRepository(e.wrappedDB()), pricing, e.log)

	return fn(svc)
}

func printSlot(w io.Writer, slot *models.SlotResponse) {
	fmt.Fprintf(w, "Slot %s / %s / %s\n", slot.TripID, slot.Date, slot.Mode)
	fmt.Fprintf(w, "  Capacity:  %d\n", slot.Capacity)
	fmt.Fprintf(w, "  Taken:     %d\n", slot.Taken)
	fmt.Fprintf(w, "  Available: %d\n", slot.Available)
	fmt.Fprintf(w, "  Updated:   %s\n", slot.UpdatedAt)
}

