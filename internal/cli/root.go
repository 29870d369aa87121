package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/nomos/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the parent of every nomos command
var rootCmd = &cobra.Command{
	Use:   "nomos",
	Short: "Nomos - Evidence-backed answers for NZ tax and company compliance",
	Long: `Nomos answers New Zealand tax and company compliance questions with
evidence it can point to.

It does not give professional tax advice.

Nomos classifies each question, retrieves evidence from a curated
knowledge base and from official web sources, reconciles duplicates and
conflicts, and composes an answer in which every claim carries a numbered
citation. When the freshest available evidence is stale, the answer
says so instead of hiding it.

Nomos shows its sources, always.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the command tree; main exits nonzero on error
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Nomos.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("nomos v0.1.4")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Flags shared by every subcommand
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.nomos/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig points viper at the config file. An explicit --config wins;
// otherwise the search falls back to ~/.nomos/config.yaml. NOMOS_* env
// variables override file values either way.
func initConfig() {
	viper.SetEnvPrefix("NOMOS")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".nomos"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file discovered by viper over the built-in
// defaults. Flags are applied on top by each command, so fields without a
// flag (authority tiers, focus domains, rate limits) come from the file.
func loadConfig() model.Config {
	cfg := model.DefaultConfig()

	path := viper.ConfigFileUsed()
	if path == "" {
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot read config file %s: %v\n", path, err)
		return cfg
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid config file %s: %v\n", path, err)
		return model.DefaultConfig()
	}

	return cfg
}
