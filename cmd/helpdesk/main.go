// Command helpdesk runs the IT helpdesk approval service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	v1 "github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/api/v1"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/approval"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/auth"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/cache"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/config"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/conversation"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/database"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/notifications"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/repository"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/routing"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/scheduler"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/template"
)

var version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "helpdesk",
		Short:         "IT helpdesk approval workflow service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(configPath string) error {
	logger := log.New(os.Stdout, "helpdesk: ", log.LstdFlags)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	templates := template.NewRegistry()
	if cfg.Templates.Dir != "" {
		if err := templates.LoadDir(cfg.Templates.Dir); err != nil {
			return err
		}
	}

	var watermarks conversation.WatermarkStore
	if cfg.Redis.Enabled {
		store := cache.NewRedisWatermarkStore(&cfg.Redis)
		if err := store.Ping(context.Background()); err != nil {
			return fmt.Errorf("redis unavailable: %w", err)
		}
		watermarks = store
	} else {
		logger.Printf("redis disabled, using in-process watermark store")
		watermarks = cache.NewMemoryWatermarkStore()
	}

	requests := repository.NewRequestRepository(db)
	approvals := repository.NewApprovalRepository(db)
	conversations := repository.NewConversationRepository(db)
	history := repository.NewHistoryRepository(db)
	users := repository.NewUserRepository(db)

	provider := notifications.NewSMTPProvider(&cfg.Email)
	mailer := notifications.NewMailer(provider)

	engine := approval.NewEngine(approvals, requests, conversations, history,
		approval.WithNotifier(mailer),
		approval.WithChainSource(templates),
		approval.WithSweepConcurrency(cfg.Approvals.AutoApproveConcurrency),
	)

	api := v1.NewAPIRouter(v1.Deps{
		Requests:      requests,
		Approvals:     approvals,
		Conversations: conversations,
		History:       history,
		Users:         users,
		Engine:        engine,
		Templates:     templates,
		Tracker:       conversation.NewTracker(watermarks),
		JWT:           auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL),
	})

	jobs := scheduler.NewService()
	reminder := scheduler.NewReminderJob(approvals, requests, provider, cfg.Approvals.ReminderAfter)
	if err := jobs.Register(cfg.Approvals.ReminderSchedule, reminder); err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}
	jobs.Start()
	defer jobs.Stop()

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: routing.BuildRouter(cfg, api, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
