package main

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type config struct {
	viper  *viper.Viper
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	c := &config{
		viper:  viper.New(),
		logger: logrus.New(),
	}
	c.viper.SetEnvPrefix("DEA")
	c.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.viper.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "dea",
		Short:         "Digital Earth Australia course utilities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(c.viper.GetString("log-level"))
			if err != nil {
				return err
			}
			c.logger.SetLevel(level)
			c.logger.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}
	rootCmd.PersistentFlags().String("log-level", "info", "log level")
	_ = c.viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(
		c.newCheckCmd(),
		c.newDumpCmd(),
		c.newExportCmd(),
		c.newInspectCmd(),
	)
	return rootCmd
}

func run() error {
	return newRootCmd().Execute()
}

func main() {
	if err := run(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
