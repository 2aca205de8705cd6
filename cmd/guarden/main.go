package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/guarden/internal/profile"
	"github.com/hrygo/guarden/plugin/ai"
	"github.com/hrygo/guarden/plugin/notify"
	"github.com/hrygo/guarden/plugin/weather"
	apiv1 "github.com/hrygo/guarden/server/router/api/v1"
	"github.com/hrygo/guarden/server/runner/rules"
	"github.com/hrygo/guarden/server/service/plant"
	"github.com/hrygo/guarden/server/service/userpref"
	"github.com/hrygo/guarden/store"
	"github.com/hrygo/guarden/store/db"
)

const (
	greetingBanner = `Guarden - keep your plants alive 🌱`
)

var rootCmd = &cobra.Command{
	Use:   "guarden",
	Short: "A plant care tracker with watering reminders and weather alerts",
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			Data:    viper.GetString("data"),
			Driver:  viper.GetString("driver"),
			DSN:     viper.GetString("dsn"),
			Version: "0.1.0",
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid profile", "error", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "error", err)
			os.Exit(1)
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		defer storeInstance.Close()

		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}

		prefService := userpref.NewService(storeInstance)
		plantService := plant.NewService(storeInstance, prefService)
		notifications := notify.NewCenter()

		var weatherProvider weather.Provider
		if instanceProfile.IsWeatherEnabled() {
			weatherProvider = weather.NewClient(&weather.Config{
				BaseURL: instanceProfile.WeatherBaseURL,
				APIKey:  instanceProfile.WeatherAPIKey,
			})
		} else {
			slog.Info("weather API key not set, weather alerts disabled")
		}

		var advisor *ai.Advisor
		if instanceProfile.IsAIEnabled() {
			advisor, err = ai.NewAdvisor(&ai.Config{
				BaseURL: instanceProfile.AIBaseURL,
				APIKey:  instanceProfile.AIAPIKey,
				Model:   instanceProfile.AIModel,
			}, storeInstance)
			if err != nil {
				slog.Warn("chat advisor disabled", "error", err)
			}
		}

		// Arm the twice-daily rule runs.
		ruleRunner := rules.NewRunner(prefService, storeInstance, weatherProvider, notifications, rules.Config{})
		scheduler := rules.NewScheduler()
		ruleRunner.Start(ctx, scheduler)

		e := echo.New()
		e.HideBanner = true
		e.Use(middleware.Recover())
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogURI:    true,
			LogStatus: true,
			LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
				slog.Info("request", "uri", v.URI, "status", v.Status)
				return nil
			},
		}))

		apiService := apiv1.NewAPIV1Service(instanceProfile, plantService, prefService, weatherProvider, advisor, notifications)
		apiService.Register(e)

		address := fmt.Sprintf("%s:%d", instanceProfile.Addr, instanceProfile.Port)
		go func() {
			if err := e.Start(address); err != nil && err != http.ErrServerClosed {
				slog.Error("server stopped", "error", err)
				stop()
			}
		}()

		fmt.Println(greetingBanner)
		slog.Info("guarden started", "address", address, "mode", instanceProfile.Mode, "driver", instanceProfile.Driver)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
		scheduler.Wait()
	},
}

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `mode of the server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)
	viper.SetEnvPrefix("guarden")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to execute command", "error", err)
		os.Exit(1)
	}
}
