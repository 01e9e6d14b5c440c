package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "INNBOT"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "innbot",
		Short:        "Telegram bot looking up companies by tax ID",
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Config file path (defaults to ./config.toml).")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	cmd.PersistentFlags().String("log-level", "", "Logging level: debug|info|warn.")
	_ = viper.BindPFlag("bot.log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLookupCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile := strings.TrimSpace(viper.GetString("config")); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
		}
	}

	setupLogging()
}

func setDefaults() {
	viper.SetDefault("bot.log_level", "info")
	viper.SetDefault("bot.log_pretty", false)
	viper.SetDefault("handler.timeout", "30s")
	viper.SetDefault("lookup.fetch_timeout", "30s")
	viper.SetDefault("lookup.daily_limit", 0)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("metrics.addr", "")
}

func setupLogging() {
	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	if viper.GetBool("bot.log_pretty") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
