package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/complete_bookings"
	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/reconcile_counts"
	"github.com/m04kA/SMC-PhysioBooking/internal/usecase/regenerate_horizon"
	"github.com/m04kA/SMC-PhysioBooking/pkg/types"
)

type Regenerator interface {
	Execute(ctx context.Context, req *regenerate_horizon.Request) (*regenerate_horizon.Response, error)
}

type Reconciler interface {
	Execute(ctx context.Context, req *reconcile_counts.Request) (*reconcile_counts.Response, error)
}

type Completer interface {
	Execute(ctx context.Context) (*complete_bookings.Response, error)
}

// Jobs операции обслуживания и освобождение ресурсов
type Jobs struct {
	Regenerator Regenerator
	Reconciler  Reconciler
	Completer   Completer
	Close       func()
}

// Opener собирает Jobs по пути к конфигурации
type Opener func(ctx context.Context, configPath string) (*Jobs, error)

// RootOptions общие флаги
type RootOptions struct {
	ConfigPath string
	JSON       bool
}

// NewRootCommand корневая команда slotctl
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "slotctl",
		Short:         "Maintenance of the physio booking slot calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "config.toml", "path to config.toml")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "print result as JSON")

	cmd.AddCommand(newRegenerateCommand(opts, open))
	cmd.AddCommand(newReconcileCommand(opts, open))
	cmd.AddCommand(newCompleteCommand(opts, open))

	return cmd
}

func newRegenerateCommand(opts *RootOptions, open Opener) *cobra.Command {
	var (
		start string
		days  int
	)

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Regenerate slots for a window of days",
		Long: `Regenerate slots for [start, start+days) from the weekly rules.
Today is never touched and slots with bookings are kept.

Examples:
  slotctl regenerate --days 14
  slotctl regenerate --start 2026-10-20 --days 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &regenerate_horizon.Request{Days: days}
			if start != "" {
				day, err := types.ParseDate(start)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				req.StartDay = day
			}

			jobs, err := open(cmd.Context(), opts.ConfigPath)
			if err != nil {
				return err
			}
			defer jobs.Close()

			resp, err := jobs.Regenerator.Execute(cmd.Context(), req)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), opts, resp, func(w io.Writer) {
				fmt.Fprintf(w, "start=%s days=%d created=%d deleted=%d kept=%d failed_days=%d\n",
					resp.StartDay, resp.Days, resp.Created, resp.DeletedEmpty, resp.Kept, len(resp.Errors))
				for _, e := range resp.Errors {
					fmt.Fprintf(w, "  %s\n", e)
				}
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first day YYYY-MM-DD (default tomorrow)")
	cmd.Flags().IntVar(&days, "days", 0, "number of days (required)")
	_ = cmd.MarkFlagRequired("days")

	return cmd
}

func newReconcileCommand(opts *RootOptions, open Opener) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recount booked counters from live bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &reconcile_counts.Request{}
			if from != "" {
				day, err := types.ParseDate(from)
				if err != nil {
					return fmt.Errorf("--from: %w", err)
				}
				req.FromDay = day
			}

			jobs, err := open(cmd.Context(), opts.ConfigPath)
			if err != nil {
				return err
			}
			defer jobs.Close()

			resp, err := jobs.Reconciler.Execute(cmd.Context(), req)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), opts, resp, func(w io.Writer) {
				fmt.Fprintf(w, "from=%s checked=%d corrected=%d oversold=%d failed_days=%d\n",
					resp.FromDay, resp.Checked, resp.Corrected, resp.Oversold, len(resp.Errors))
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day YYYY-MM-DD (default today)")

	return cmd
}

func newCompleteCommand(opts *RootOptions, open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Mark confirmed bookings of ended slots as completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := open(cmd.Context(), opts.ConfigPath)
			if err != nil {
				return err
			}
			defer jobs.Close()

			resp, err := jobs.Completer.Execute(cmd.Context())
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), opts, resp, func(w io.Writer) {
				fmt.Fprintf(w, "completed=%d\n", resp.Completed)
			})
		},
	}
}

func report(w io.Writer, opts *RootOptions, v interface{}, text func(w io.Writer)) error {
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
