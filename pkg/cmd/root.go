package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	RootCmdName  = "carshop"
	RootCmdShort = "Vehicle dealership storefront"
	RootCmdLong  = `carshop serves the dealership storefront: catalog search, session carts,
checkout pricing and credit simulation, backed by the vehicle, customer and
order GraphQL services.`

	ServeCmdName  = "serve"
	ServeCmdShort = "Start the storefront HTTP server"
	ServeCmdLong  = `Start the storefront HTTP server. Settings come from defaults, an optional
config file (--config), a .env file and CARSHOP_* environment variables.`
)

var RootCmd = &cobra.Command{
	Use:   RootCmdName,
	Short: RootCmdShort,
	Long:  RootCmdLong,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadDotEnv()
	},
}

// Execute runs the root command.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(-1)
	}
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "path to a config file (yaml, json or toml)")
	RootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	_ = viper.BindPFlag("config", RootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("env_file", RootCmd.PersistentFlags().Lookup("env-file"))

	RootCmd.AddCommand(ServeCmd)
	RootCmd.AddCommand(HashPasswordCmd)
}

// loadDotEnv loads the dotenv file when present. Variables already set in
// the environment win.
func loadDotEnv() error {
	path := viper.GetString("env_file")
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
