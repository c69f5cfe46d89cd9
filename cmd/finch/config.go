package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finch/internal/config"
	"finch/internal/storage"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect finch configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFlag
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Long: `Print the effective configuration: file values with FINCH_* environment overrides
applied. The file is created with defaults if it does not exist. A password in db_url is
masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, path, err := config.LoadConfig(configFlag)
	if err != nil {
		return err
	}

	cfg.DBURL = storage.RedactURL(cfg.DBURL)

	data, err := cfg.Encode()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# %s\n", path)
	_, err = out.Write(data)
	return err
}
