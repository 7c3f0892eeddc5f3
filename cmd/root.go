// Package cmd wires the command line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/flowlens/internal/app"
	"github.com/zjrosen/flowlens/internal/config"
	"github.com/zjrosen/flowlens/internal/log"
)

var (
	cfg      config.Config
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "flowlens [file...]",
	Short: "Interactive viewer for node-graph workflow files",
	Long: `Flowlens renders image-generation workflow files (.json, or .png with
embedded metadata) as an interactive node diagram: pan, zoom, select nodes,
inspect parameters, and copy values to the clipboard.`,
	Args: cobra.ArbitraryArgs,
	RunE: runRoot,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/flowlens/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Flags().Bool("no-watch", false, "disable reloading open files when they change on disk")
}

// initConfig loads defaults, then the config file, then flag overrides.
func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("auto_reload", defaults.AutoReload)
	viper.SetDefault("log.path", defaults.Log.Path)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("ui.show_sidebar", defaults.UI.ShowSidebar)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(configDir, "flowlens"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("FLOWLENS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; a broken one is not.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "reading config: %v\n", err)
			os.Exit(1)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "parsing config: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		cfg.AutoReload = false
	}

	if err := log.Init(cfg.Log.Path, cfg.Log.Level); err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer log.Close()

	for _, arg := range args {
		if _, err := os.Stat(arg); err != nil {
			return fmt.Errorf("cannot open %s: %w", arg, err)
		}
	}

	commands := make(chan Command)
	model := app.New(cfg, commands, args)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)

	log.Info(log.CatUI, "starting", "files", len(args))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	close(commands)
	return nil
}

// Command re-exports the app command type for host integrations embedding
// the CLI.
type Command = app.Command
