package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-ReservationCore/internal/config"
	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/infra/catalog"
)

func catalogCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with the trip catalog file",
	}

	var path string
	check := &cobra.Command{
		Use:   "check",
		Short: "Validate the catalog file and print its trips",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				cfg, err := config.Load(*configPath)
				if err != nil {
					return err
				}
				path = cfg.Catalog.Path
			}
			return runCatalogCheck(cmd.OutOrStdout(), path)
		},
	}
	check.Flags().StringVarP(&path, "file", "f", "", "Catalog file (defaults to catalog.path from config)")
	cmd.AddCommand(check)

	return cmd
}

func runCatalogCheck(w io.Writer, path string) error {
	c, err := catalog.LoadFile(path)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(c.Trips))
	for id := range c.Trips {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintf(w, "Catalog %s: %d trip(s)\n", path, len(ids))
	for _, id := range ids {
		trip := c.Trips[id]
		fmt.Fprintf(w, "  %s (%s)\n", trip.ID, trip.Currency)
		for _, m := range trip.Modes {
			fmt.Fprintf(w, "    %-12s %-12s %8d%s\n", m.Name, m.Pricing, m.PriceCents, capacityNote(m))
		}
	}
	return nil
}

func capacityNote(m domain.TripMode) string {
	if m.DefaultCapacity == nil {
		return ""
	}
	return fmt.Sprintf("  capacity=%d", *m.DefaultCapacity)
}
