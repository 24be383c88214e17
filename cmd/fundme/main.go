package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/compose-network/fundme-deployer/configs"
	"github.com/compose-network/fundme-deployer/internal/fundme"
	"github.com/compose-network/fundme-deployer/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func loadConfig(cmd *cobra.Command, args []string) error {
	logger.Initialize(slog.LevelDebug)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.With("err", err.Error()).Warn("failed to load .env file")
	}

	if err := configs.MergeDefaults(viper.GetViper()); err != nil {
		return err
	}
	if err := configs.BindEnv(viper.GetViper()); err != nil {
		return err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		viper.AddConfigPath(execDir)
	}
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// The embedded defaults are already loaded, a config file only carries
	// overrides.
	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("no config file found, will rely on flags and defaults")
		} else {
			const errMsg = "error reading config file"
			slog.With("err", err.Error()).Error(errMsg)
			return errors.Join(err, errors.New(errMsg))
		}
	} else {
		slog.With("config_file", viper.ConfigFileUsed()).Debug("config file loaded")
	}

	if err := viper.Unmarshal(&configs.Values); err != nil {
		const errMsg = "unable to decode application config"
		slog.With("err", err.Error()).Error(errMsg)
		return errors.Join(err, errors.New(errMsg))
	}

	level, err := logger.ParseLevel(configs.Values.Log.Level)
	if err != nil {
		return err
	}
	logger.InitializeWithFormat(os.Stdout, level, configs.Values.Log.Format)

	slog.With("network", configs.Values.Network).Debug("configuration loaded")

	return nil
}

func main() {
	rootCmd := fundme.CMD
	rootCmd.PersistentPreRunE = loadConfig
	rootCmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		stop()
		os.Exit(1)
	}
}
