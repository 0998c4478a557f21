package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/wkview/internal/cli/styles"
	"github.com/bnema/wkview/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Show where configuration is read from, print the effective settings, or write a default file.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE:  runConfigPath,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Long:  `Print the configuration after defaults, the config file and WKVIEW_* environment variables are merged.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	path := app.ConfigFile
	status := app.Theme.SuccessStyle.Render("loaded")
	if path == "" {
		var err error
		if path, err = config.GetConfigFile(); err != nil {
			return err
		}
		status = app.Theme.WarningStyle.Render("not found, using defaults")
	}
	fmt.Println(app.Theme.KeyValue("config", path) + " " + status)
	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	data, err := config.Encode(app.Config)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

// runConfigInit runs without an App so a broken or missing --config file
// can still be replaced.
func runConfigInit(_ *cobra.Command, _ []string) error {
	theme := styles.NewTheme()

	path := configFile
	if path == "" {
		var err error
		if path, err = config.GetConfigFile(); err != nil {
			return err
		}
	}
	if configForce {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	if err := config.WriteDefault(path); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			fmt.Println(theme.WarningStyle.Render("config already exists: ") + path)
			fmt.Println(theme.Subtle.Render("use --force to overwrite it"))
			return nil
		}
		return err
	}
	fmt.Println(theme.SuccessStyle.Render("wrote ") + path)
	return nil
}
