package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/exert/internal/config"
	"github.com/1broseidon/exert/internal/tiling"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration file",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration, including keybind commands",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigPrint,
}

var configExplainCmd = &cobra.Command{
	Use:   "explain <yaml.path>",
	Short: "Show a config value and where it was set",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigExplain,
}

func init() {
	configPrintCmd.Flags().Bool("defaults", false, "Print built-in defaults (no files)")
	configCmd.AddCommand(configValidateCmd, configPrintCmd, configExplainCmd)
	rootCmd.AddCommand(configCmd)
}

// configPath returns the --config flag or the default location.
func configPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	return config.DefaultConfigPath()
}

func loadConfig(cmd *cobra.Command) (*config.LoadResult, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	return config.LoadFromPath(path)
}

// checkKeybinds decodes every command binding the way the daemon will.
func checkKeybinds(cfg *config.Config) error {
	for i, kb := range cfg.Keybinds {
		if !kb.Internal() {
			continue
		}
		if _, err := tiling.ParseCommand(kb.Command, kb.Arg); err != nil {
			return &config.ValidationError{Path: fmt.Sprintf("keybinds[%d]", i), Err: err}
		}
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	res, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := checkKeybinds(res.Config); err != nil {
		return res.Annotate(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "config: ok")
	return nil
}

func runConfigPrint(cmd *cobra.Command, _ []string) error {
	cfg := config.DefaultConfig()
	if defaults, _ := cmd.Flags().GetBool("defaults"); !defaults {
		res, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = res.Config
		if res.File != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n", res.File)
		}
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigExplain(cmd *cobra.Command, args []string) error {
	res, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	value, src, err := config.Explain(res, args[0])
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(value)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "path: %s\n", args[0])
	fmt.Fprintf(w, "source: %s\n", formatSource(src))
	fmt.Fprintf(w, "value:\n%s", out)
	return nil
}

func formatSource(src config.Source) string {
	if src.Kind == config.SourceFile {
		return fmt.Sprintf("%s:%d:%d", src.File, src.Line, src.Column)
	}
	return "default"
}
