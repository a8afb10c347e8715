package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insightink/insightink/internal/profile"
	"github.com/insightink/insightink/internal/version"
	"github.com/insightink/insightink/server"
	"github.com/insightink/insightink/store"
	"github.com/insightink/insightink/store/db"
)

const greetingBanner = `insightink - capture notes, let the machine file them.`

var rootCmd = &cobra.Command{
	Use:   "insightink",
	Short: "A self-hosted note-taking service with tags and semantic search",
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Version: version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "error", err)
			os.Exit(1)
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			slog.Error("failed to create server", "error", err)
			os.Exit(1)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			slog.Info("received signal, shutting down", "signal", sig.String())
			cancel()
		}()

		printGreetings(instanceProfile)

		if err := s.Start(ctx); err != nil {
			slog.Error("server exited with error", "error", err)
		}
		s.Shutdown(ctx)
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)
	viper.SetDefault("data", ".")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of the server")
	rootCmd.PersistentFlags().String("data", ".", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("insightink")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

func printGreetings(p *profile.Profile) {
	fmt.Println(greetingBanner)
	fmt.Printf("version %s, mode %s, driver %s\n", p.Version, p.Mode, p.Driver)
	fmt.Printf("listening on %s:%d\n", p.Addr, p.Port)
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
