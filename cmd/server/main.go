package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/surajorg0/jira-tracker-backend/internal/config"
	"github.com/surajorg0/jira-tracker-backend/internal/db"
	"github.com/surajorg0/jira-tracker-backend/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "jira-tracker",
	Short: "Issue and project tracker backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		cfg := config.Load()

		conn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		if err := db.EnsureAdmin(conn, cfg); err != nil {
			return err
		}

		handler, err := server.New(conn, cfg)
		if err != nil {
			return err
		}
		srv := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			log.Printf("Server starting on port %s (env=%s)", cfg.Port, cfg.Env)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Server error: %v", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		log.Println("Server stopped gracefully")
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run SQL migrations and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		cfg := config.Load()
		if err := db.MigrateUp(cfg.DatabaseDSN); err != nil {
			return err
		}
		log.Println("Migrations completed")
		return nil
	},
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Ensure the admin account exists and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		cfg := config.Load()
		conn, err := db.ConnectAndMigrate(cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		if err := db.EnsureAdmin(conn, cfg); err != nil {
			return err
		}
		log.Println("Admin account ensured")
		return nil
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, bootstrapCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
