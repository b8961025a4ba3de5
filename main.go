// Package main provides the entry point for the kisan CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/mykisan/kisan/internal/api"
	"github.com/mykisan/kisan/internal/settings"
	"github.com/mykisan/kisan/ui"
	"github.com/mykisan/kisan/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	style       string
	width       uint
	mouse       bool
	debug       bool
	environment string
	location    string

	rootCmd = &cobra.Command{
		Use:   "kisan",
		Short: "Your AI farming companion, in the terminal",
		Long: paragraph(
			fmt.Sprintf("\nCrop diagnosis, market prices and government schemes, %s.", keyword("by voice or text")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: func(*cobra.Command, []string) error {
			return runTUI()
		},
	}
)

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if err := utils.ValidateStyle(style); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		}
		return fmt.Errorf("unable to stat file: %w", err)
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("unable to read config file: %w", err)
			}
		}
	}

	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	debug = viper.GetBool("debug")
	environment = viper.GetString("env")
	location = viper.GetString("location")

	if debug {
		log.SetLevel(log.DebugLevel)
	}

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
	// We want to use a special no-TTY style, when stdout is not a terminal
	// and there was no specific style passed by arg
	if !isTerminal && !cmd.Flags().Changed("style") {
		style = styles.NoTTYStyle
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}

	log.Debug("Options", "style", style, "width", width, "env", environment, "location", location)
	return nil
}

func runTUI() error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the --style value if unset
	if cfg.GlamourStyle == "" || validateStyle(cfg.GlamourStyle) != nil {
		cfg.GlamourStyle = style
	}

	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	if location != "" {
		cfg.Location = location
	}
	if cwd, err := os.Getwd(); err == nil {
		cfg.Path = cwd
	}

	b, err := openBackends(true)
	if err != nil {
		return err
	}
	defer b.Close() //nolint:errcheck

	p := ui.NewProgram(cfg, b.services())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if b.settings != nil {
		go func() {
			err := b.settings.Watch(ctx, func(st settings.Settings) {
				p.Send(ui.SettingsChangedMsg(st))
			})
			if err != nil {
				log.Debug("Not watching settings", "error", err)
			}
		}()
	}

	// Run Bubble Tea program
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", configFile, fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	flags.UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to disable)")
	flags.StringVar(&environment, "env", "production", "backend environment (production or development)")
	flags.StringVar(&location, "location", api.DefaultLocation, "default location for market prices")
	flags.BoolVar(&debug, "debug", false, "log debug output")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel (TUI-mode only)")
	_ = rootCmd.Flags().MarkHidden("mouse")

	// Config bindings
	_ = viper.BindPFlag("style", flags.Lookup("style"))
	_ = viper.BindPFlag("width", flags.Lookup("width"))
	_ = viper.BindPFlag("env", flags.Lookup("env"))
	_ = viper.BindPFlag("location", flags.Lookup("location"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("env", "production")
	viper.SetDefault("location", api.DefaultLocation)
	viper.SetDefault("api.timeout", api.DefaultTimeout)
	viper.SetDefault("voice.recorder", "")
	viper.SetDefault("voice.recognizer", "")

	rootCmd.AddCommand(marketCmd, schemesCmd, diagnoseCmd, shellCmd, historyCmd, cacheCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "kisan")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "kisan")}, dirs...)
	}

	if c := os.Getenv("KISAN_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("kisan")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("kisan")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		configFile = used
		return
	}

	configFile = filepath.Join(dirs[0], "kisan.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
