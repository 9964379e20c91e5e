// Command pontoctl is a CLI client for the PontoMais time clock: it signs
// in, shows the day's punches with the computed shift figures, and registers
// new punches.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pontoctl/internal/api"
	"pontoctl/internal/app"
	"pontoctl/internal/config"
	"pontoctl/internal/errs"
	"pontoctl/internal/ledger"
	"pontoctl/internal/logger"
	"pontoctl/internal/model"
	"pontoctl/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// env bundles everything a command needs once configuration is loaded.
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	client   *api.Client
	sessions *session.Store
	service  *app.Service
}

func newEnv() (*env, error) {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	client := api.New(cfg.APIBase, cfg.HTTPTimeout, log)
	sessions := session.NewStore(cfg.StateDir)

	sess, err := sessions.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.LoggedIn() {
		client.SetSession(sess)
	}

	deviceID, err := sessions.DeviceID()
	if err != nil {
		return nil, fmt.Errorf("device id: %w", err)
	}

	led := ledger.NewStore(cfg.StateDir, log)
	svc := app.New(client, led, deviceID, cfg.ProxyURL, log)

	return &env{cfg: cfg, log: log, client: client, sessions: sessions, service: svc}, nil
}

func (e *env) close() { _ = e.log.Sync() }

func (e *env) requireLogin() error {
	if !e.client.Session().LoggedIn() {
		return fmt.Errorf("%w: run `pontoctl login` first", errs.ErrNotLoggedIn)
	}
	return nil
}

func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	return ctx, func() { cancel(); stop() }
}

func main() {
	root := &cobra.Command{
		Use:           "pontoctl",
		Short:         "Personal work-time tracker for the PontoMais time clock",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newLoginCmd(), newLogoutCmd(), newStatusCmd(), newPunchCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pontoctl %s (%s)\n", version, buildDate)
		},
	}
}

func newLoginCmd() *cobra.Command {
	var user, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || password == "" {
				return fmt.Errorf("need --user and --password")
			}
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			ctx, cancel := commandContext()
			defer cancel()

			sess, err := e.client.SignIn(ctx, user, password)
			if err != nil {
				return err
			}
			if err := e.sessions.Save(sess); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}
			fmt.Println("ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "login email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.sessions.Clear(); err != nil {
				return err
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's punches and shift projections",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.requireLogin(); err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()

			sum, err := e.service.Refresh(ctx)
			if err != nil {
				return err
			}
			printSummary(sum)
			return nil
		},
	}
}

func newPunchCmd() *cobra.Command {
	var (
		ref      int
		useLast  bool
		lat, lng float64
		address  string
	)
	cmd := &cobra.Command{
		Use:   "punch",
		Short: "Register a new punch",
		Long: "Register a new punch. The location defaults to the last registered\n" +
			"punch when available, then to the first saved reference; --ref, --last\n" +
			"or --lat/--lng/--address override it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()
			if err := e.requireLogin(); err != nil {
				return err
			}

			ctx, cancel := commandContext()
			defer cancel()

			sum, err := e.service.Refresh(ctx)
			if err != nil {
				return err
			}

			explicit := cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") || cmd.Flags().Changed("address")
			loc, err := pickLocation(sum, ref, useLast, explicit, lat, lng, address)
			if err != nil {
				return err
			}

			if err := e.service.Punch(ctx, loc); err != nil {
				return err
			}
			fmt.Println("punch registered at", model.CleanAddress(loc.Address))

			sum, err = e.service.Refresh(ctx)
			if err != nil {
				// The punch went through; only the follow-up view failed.
				e.log.Warn("refresh after punch", zap.Error(err))
				return nil
			}
			printSummary(sum)
			return nil
		},
	}
	cmd.Flags().IntVar(&ref, "ref", -1, "use the Nth saved reference location")
	cmd.Flags().BoolVar(&useLast, "last", false, "use the last registered punch location")
	cmd.Flags().Float64Var(&lat, "lat", 0, "explicit latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "explicit longitude")
	cmd.Flags().StringVar(&address, "address", "", "explicit address")
	return cmd
}

func pickLocation(sum *app.Summary, ref int, useLast, explicit bool, lat, lng float64, address string) (model.Location, error) {
	switch {
	case explicit:
		return model.Location{
			Latitude:          lat,
			Longitude:         lng,
			Address:           address,
			OriginalLatitude:  lat,
			OriginalLongitude: lng,
			OriginalAddress:   address,
		}, nil
	case useLast:
		if sum.LastLocation == nil {
			return model.Location{}, fmt.Errorf("no previous punch location on record")
		}
		return *sum.LastLocation, nil
	case ref >= 0:
		if ref >= len(sum.References) {
			return model.Location{}, fmt.Errorf("reference %d out of range (%d saved)", ref, len(sum.References))
		}
		return sum.References[ref], nil
	case sum.LastLocation != nil:
		return *sum.LastLocation, nil
	case len(sum.References) > 0:
		return sum.References[0], nil
	}
	return model.Location{}, fmt.Errorf("no location available: pass --lat/--lng/--address")
}

func printSummary(sum *app.Summary) {
	fmt.Printf("Worked today:    %s (target %dh)\n", model.FormatDuration(sum.Worked), sum.Classification.TargetHoursPerDay)
	fmt.Printf("Expected end:    %s\n", fmtClock(sum.ExpectedEnd))
	fmt.Printf("Overtime after:  %s\n", fmtClock(sum.OvertimeLimit))
	if sum.TimeBalance != nil {
		fmt.Printf("Time bank:       %s (settles %s)\n",
			model.FormatDuration(*sum.TimeBalance), model.FormatDay(sum.BankExpiresAt))
	}
	if sum.LastPunchDate != "" {
		fmt.Printf("Last punch:      %s %s\n", sum.LastPunchDate, sum.LastPunchTime)
	}

	fmt.Println()
	if len(sum.Punches) == 0 {
		fmt.Println("No punches today.")
		return
	}
	for i, ev := range sum.Punches {
		role := "Entrada"
		if i%2 == 1 {
			role = "Saída"
		}
		line := fmt.Sprintf("  %s  %-7s", ev.Time, role)
		if label := model.ShortSource(ev.SourceLabel); label != "" {
			line += fmt.Sprintf("  [%s]", label)
		}
		if ev.Pending {
			line += "  (pending)"
		}
		fmt.Println(line)
		if ev.Location != nil {
			if addr := model.CleanAddress(ev.Location.Address); addr != "" {
				fmt.Printf("           %s\n", addr)
			}
		}
	}
}

func fmtClock(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return model.FormatClock(*t)
}
