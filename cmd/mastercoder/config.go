package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/mastercoder/internal/config"
)

const apiKeySetting = "anthropic.api_key"

var (
	configListKeys bool
	configInit     bool
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify mastercoder configuration.

Without arguments, prints the effective configuration as YAML.
With one argument (key), prints the value for that key.
With two arguments (key value), sets the value in the user config.

Configuration is stored at ~/.config/mastercoder/config.yaml
Project-specific overrides can be placed in .mastercoder.yaml
Script overrides are set per capability, e.g. workers.scripts.testing "go test ./..."`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configListKeys, "keys", false, "List every settable key")
	configCmd.Flags().BoolVar(&configInit, "init", false, "Write the default configuration to the user config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if configInit {
		return initUserConfig(out)
	}

	if configListKeys {
		for _, k := range config.Keys() {
			fmt.Fprintln(out, k)
		}
		return nil
	}

	if len(args) == 2 {
		if err := config.SetUserValue(args[0], args[1]); err != nil {
			return err
		}
		shown := args[1]
		if strings.EqualFold(args[0], apiKeySetting) {
			shown = config.MaskAPIKey(shown)
		}
		printStatus("✓", fmt.Sprintf("Set %s = %s", args[0], shown), color.FgGreen)
		return nil
	}

	v, err := config.LoadViper()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if len(args) == 1 {
		return printConfigKey(out, v, args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	muted := color.New(color.FgHiBlack)
	muted.Fprintf(out, "# user config:    %s\n", config.GetUserConfigPath())
	if p := config.GetProjectConfigPath(); p != "" {
		muted.Fprintf(out, "# project config: %s\n", p)
	}
	muted.Fprintf(out, "# credentials:    %s\n", config.GetAPIKeySource(cfg))
	return dumpConfig(out, v)
}

// initUserConfig writes the defaults to the user config file. An existing
// file is left alone.
func initUserConfig(w io.Writer) error {
	path := config.GetUserConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Save(config.Default()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(w, "Wrote default configuration to %s\n", path)
	return nil
}

// printConfigKey prints one value. Nested keys print as YAML.
func printConfigKey(w io.Writer, v *viper.Viper, key string) error {
	key = strings.ToLower(key)
	if !v.IsSet(key) && !slices.Contains(config.Keys(), key) {
		return fmt.Errorf("%w: %s", config.ErrUnknownKey, key)
	}

	if key == apiKeySetting {
		fmt.Fprintln(w, config.MaskAPIKey(v.GetString(key)))
		return nil
	}

	switch val := v.Get(key).(type) {
	case map[string]any:
		data, err := yaml.Marshal(val)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		fmt.Fprint(w, string(data))
	case nil:
		fmt.Fprintln(w)
	default:
		fmt.Fprintln(w, val)
	}
	return nil
}

// dumpConfig writes every setting as YAML with the API key masked.
func dumpConfig(w io.Writer, v *viper.Viper) error {
	settings := v.AllSettings()
	if anthropic, ok := settings["anthropic"].(map[string]any); ok {
		key, _ := anthropic["api_key"].(string)
		anthropic["api_key"] = config.MaskAPIKey(key)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
