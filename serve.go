package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/handlers"
	"github.com/CrowderSoup/kanban/services"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.Logger()

	authService, err := services.NewAuthService(cfg.JWTSecret, services.DefaultTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to configure auth: %w", err)
	}

	db, err := database.InitDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	store := database.NewStore(db, database.WithLogger(logger), database.WithMaxRetries(cfg.TxMaxRetries))
	defer store.Close()

	hub := services.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	router := handlers.NewRouter(handlers.RouterConfig{
		Services:    services.New(store, logger, hub),
		AuthService: authService,
		Hub:         hub,
		Origins:     cfg.CORSOrigins,
		Logger:      logger,
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "db_path", cfg.DBPath)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := database.InitDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to migrate %s: %w", cfg.DBPath, err)
	}
	defer db.Close()
	cfg.Logger().Info("schema up to date", "db_path", cfg.DBPath)
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	authService, err := services.NewAuthService(cfg.JWTSecret, services.DefaultTokenTTL)
	if err != nil {
		return err
	}
	token, err := authService.CreateJWT(tokenUser)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
