package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger/internal/bootstrap"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "Herramientas operativas del stock ledger",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newReconcileCmd(), newTokenCmd())
	return root
}

// loadEnv carga configuración y logger hacia stderr.
func loadEnv() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "ledgerctl", Output: os.Stderr})
	return cfg, log, nil
}

// ─── migrate ──────────────────────────────────────────────────────────────────

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones SQL embebidas pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				return fmt.Errorf("conexión a PostgreSQL: %w", err)
			}
			defer pool.Close()

			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				return err
			}
			log.Info().Strs("applied", applied).Msg("migraciones aplicadas")
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "sin migraciones pendientes")
			}
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// ─── reconcile ────────────────────────────────────────────────────────────────

func newReconcileCmd() *cobra.Command {
	var repair, asJSON bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compara los totales de tarjetas y lotes con la suma de sus movimientos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := bootstrap.OpenStore(ctx, cfg, log.Component("store"))
			if err != nil {
				return err
			}
			defer store.Close()

			ucs := bootstrap.NewUseCases(store, cfg.Ledger, nil, log.Component("reconcile"))
			report, err := ucs.Reconcile.Run(ctx, repair)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			fmt.Fprintf(out, "tarjetas revisadas: %d\nlotes revisados: %d\ndiferencias: %d\n",
				report.CardsChecked, report.LotsChecked, len(report.Discrepancies))
			for _, d := range report.Discrepancies {
				fmt.Fprintf(out, "  %s %s guardado=%d ledger=%d reparado=%t\n", d.Aggregate, d.ID, d.Stored, d.Ledger, d.Repaired)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "corrige el total guardado con la suma del ledger")
	cmd.Flags().BoolVar(&asJSON, "json", false, "salida JSON")
	return cmd
}

// ─── token ────────────────────────────────────────────────────────────────────

func newTokenCmd() *cobra.Command {
	var userID, role string
	var expMinutes int
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emite un JWT de desarrollo firmado con JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			if expMinutes <= 0 {
				expMinutes = cfg.JWT.Expiration
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, userID, role, cfg.JWT.Issuer, expMinutes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "ID del usuario que actúa")
	cmd.Flags().StringVar(&role, "role", "stock_manager", "admin | stock_manager | viewer")
	cmd.Flags().IntVar(&expMinutes, "exp", 0, "minutos de validez (0 = JWT_EXPIRATION_MINUTES)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
