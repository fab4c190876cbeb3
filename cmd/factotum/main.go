// Command factotum is the task dispatch daemon and its companion CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"factotum/internal/config"
	"factotum/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "factotum",
	Short: "Dispatch natural-language tasks to sandboxed capabilities",
	Long: `factotum turns free-form task descriptions into ordered capability
plans via an LLM, then executes each step inside a sandboxed workspace.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to config file (default ~/.factotum/config.yaml)")
	flags.String("root", "", "sandbox root directory")
	flags.String("model", "", "intent model name")
	flags.String("api-key", "", "API key for the intent model")
	flags.String("base-url", "", "base URL of the model API")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	for _, name := range []string{"config", "root", "model", "api-key", "base-url", "verbose"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(serveCmd, runCmd, versionCmd)
}

// loadConfig layers defaults, the yaml file, FACTOTUM_* env vars and finally
// the command line flags.
func loadConfig() (config.RuntimeConfig, error) {
	opts := []config.Option{
		config.WithOverrides(func(cfg *config.RuntimeConfig) {
			if v := viper.GetString("root"); v != "" {
				cfg.SandboxRoot = v
			}
			if v := viper.GetString("model"); v != "" {
				cfg.LLMModel = v
			}
			if v := viper.GetString("api-key"); v != "" {
				cfg.APIKey = v
			}
			if v := viper.GetString("base-url"); v != "" {
				cfg.BaseURL = v
			}
			if viper.GetBool("verbose") {
				cfg.Verbose = true
			}
		}),
	}
	if path := viper.GetString("config"); path != "" {
		opts = append(opts, config.WithConfigPath(path))
	}

	cfg, _, err := config.Load(opts...)
	if err != nil {
		return config.RuntimeConfig{}, err
	}
	if cfg.Verbose {
		logging.SetGlobalLevel(logging.DEBUG)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errLabel(err.Error()))
		os.Exit(1)
	}
}
