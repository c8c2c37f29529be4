package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/occuhealth/capture/internal/config"
	"github.com/occuhealth/capture/internal/domain/record"
	"github.com/occuhealth/capture/internal/domain/validation"
	"github.com/occuhealth/capture/internal/offline"
	"github.com/occuhealth/capture/internal/remote"
	syncpkg "github.com/occuhealth/capture/internal/sync"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "capture",
		Short: "Occupational health encounter capture workstation",
	}

	rootCmd.PersistentFlags().Bool("offline", false, "Force offline mode; everything queues locally")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(saveCmd())
	rootCmd.AddCommand(submitCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(queueCmd())
	rootCmd.AddCommand(resyncCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logNavigator surfaces the orchestrator's navigation signals on the
// terminal instead of a screen transition.
type logNavigator struct {
	log zerolog.Logger
}

func (n logNavigator) RedirectTo(id string) {
	n.log.Info().Str("server_id", id).Msg("encounter now tracked under server id")
}

func (n logNavigator) NavigateAway() {
	n.log.Info().Msg("encounter submitted, capture session complete")
}

type workstation struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *offline.SQLiteStore
	orch  *syncpkg.Orchestrator
	net   syncpkg.StaticConnectivity
}

func newWorkstation(cmd *cobra.Command) (*workstation, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateCapture(); err != nil {
		return nil, err
	}

	store, err := offline.NewSQLiteStore(cfg.OfflineDBPath)
	if err != nil {
		return nil, fmt.Errorf("open offline store: %w", err)
	}

	forceOffline, _ := cmd.Flags().GetBool("offline")
	net := syncpkg.StaticConnectivity{
		IsOnline: cfg.RemoteBaseURL != "" && !forceOffline,
	}

	client := remote.NewClient(cfg.RemoteBaseURL,
		remote.WithTokenSource(func() string { return cfg.RemoteToken }))

	orch := syncpkg.NewOrchestrator(store, client, net, logNavigator{log: logger},
		syncpkg.WithLogger(logger))

	return &workstation{cfg: cfg, log: logger, store: store, orch: orch, net: net}, nil
}

func (w *workstation) close() {
	if err := w.store.Close(); err != nil {
		w.log.Error().Err(err).Msg("close offline store")
	}
}

// loadRecord assembles a record from a sections JSON file plus identifiers.
func loadRecord(path, localID, serverID string) (*record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sections file: %w", err)
	}
	var sections record.Sections
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parse sections file: %w", err)
	}
	if localID == "" {
		localID = record.NewLocalID()
	}
	return record.Assemble(localID, serverID, "", sections), nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func saveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save an encounter draft, locally first, then sync if online",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			localID, _ := cmd.Flags().GetString("local-id")
			serverID, _ := cmd.Flags().GetString("server-id")

			w, err := newWorkstation(cmd)
			if err != nil {
				return err
			}
			defer w.close()

			rec, err := loadRecord(file, localID, serverID)
			if err != nil {
				return err
			}
			res, err := w.orch.Save(cmd.Context(), rec)
			if err != nil {
				return fmt.Errorf("failed to save encounter locally, please retry: %w", err)
			}
			return printJSON(res)
		},
	}
	cmd.Flags().String("file", "", "Path to the sections JSON file")
	cmd.Flags().String("local-id", "", "Local encounter id (generated when empty)")
	cmd.Flags().String("server-id", "", "Server id when the encounter is already synced")
	cmd.MarkFlagRequired("file")
	return cmd
}

func submitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit an encounter for review",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			localID, _ := cmd.Flags().GetString("local-id")
			serverID, _ := cmd.Flags().GetString("server-id")

			w, err := newWorkstation(cmd)
			if err != nil {
				return err
			}
			defer w.close()

			rec, err := loadRecord(file, localID, serverID)
			if err != nil {
				return err
			}
			res, err := w.orch.Submit(cmd.Context(), rec)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().String("file", "", "Path to the sections JSON file")
	cmd.Flags().String("local-id", "", "Local encounter id (generated when empty)")
	cmd.Flags().String("server-id", "", "Server id when the encounter is already synced")
	cmd.MarkFlagRequired("file")
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check encounter completeness without saving or submitting",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")

			rec, err := loadRecord(file, "", "")
			if err != nil {
				return err
			}
			verdict := validation.Validate(rec)
			return printJSON(map[string]interface{}{
				"is_valid":              verdict.IsValid,
				"errors":                verdict.Errors,
				"completion_percentage": verdict.CompletionPercentage,
				"first_invalid_section": validation.FirstInvalidSection(rec),
			})
		},
	}
	cmd.Flags().String("file", "", "Path to the sections JSON file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func queueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show locally stored encounters awaiting sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWorkstation(cmd)
			if err != nil {
				return err
			}
			defer w.close()

			ctx := cmd.Context()
			count, err := w.store.Count(ctx)
			if err != nil {
				return err
			}
			pending, err := w.store.ListPending(ctx)
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(pending))
			for _, env := range pending {
				keys = append(keys, env.Key)
			}
			return printJSON(map[string]interface{}{
				"count":   count,
				"pending": keys,
				"online":  w.net.Online(),
			})
		},
	}
}

func resyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resync",
		Short: "Resubmit queued encounters to the review server",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWorkstation(cmd)
			if err != nil {
				return err
			}
			defer w.close()

			if !w.net.Online() {
				return fmt.Errorf("cannot resync while offline")
			}
			n, err := w.orch.ReplayPending(cmd.Context())
			if err != nil {
				return err
			}
			w.log.Info().Int("replayed", n).Msg("resync complete")
			return printJSON(map[string]int{"replayed": n})
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the workspace API for a thin capture client",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWorkstation(cmd)
			if err != nil {
				return err
			}
			defer w.close()

			e := echo.New()
			e.HideBanner = true
			e.HidePort = true

			h := syncpkg.NewHandler(w.orch, w.store, w.net)
			h.RegisterRoutes(e.Group("/workspace"))

			go func() {
				addr := ":" + w.cfg.Port
				w.log.Info().Str("addr", addr).Msg("starting workspace API")
				if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
					w.log.Fatal().Err(err).Msg("server error")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			w.log.Info().Msg("shutting down workspace API")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := e.Shutdown(ctx); err != nil {
				w.log.Fatal().Err(err).Msg("server shutdown failed")
			}
			return nil
		},
	}
}
