package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/connradolisboa/todoist-vault-sync/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		Short:       "Write a commented default config file",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		RunE:        runConfigInit,
	}
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := flagConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if err := config.CreateDefaultConfig(path); err != nil {
		return err
	}

	fmt.Printf("Wrote default config to %s\n", path)

	return nil
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration after all overrides",
		RunE:  runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(cc.Cfg)
	}

	fmt.Printf("vault.root:                %s\n", cc.Cfg.Vault.Root)
	fmt.Printf("vault.base_folder:         %s\n", cc.Cfg.Vault.BaseFolder)
	fmt.Printf("import.required_label:     %s\n", cc.Cfg.Import.RequiredLabel)
	fmt.Printf("missing_remote.completed:  %s\n", cc.Cfg.Missing.CompletedMode)
	fmt.Printf("missing_remote.deleted:    %s\n", cc.Cfg.Missing.DeletedMode)
	fmt.Printf("conflict.strategy:         %s\n", cc.Cfg.Conflict.Strategy)
	fmt.Printf("logging.log_level:         %s\n", cc.Cfg.Logging.LogLevel)
	fmt.Printf("network.connect_timeout:   %s\n", cc.Cfg.Network.ConnectTimeout)
	fmt.Printf("network.request_timeout:   %s\n", cc.Cfg.Network.RequestTimeout)

	return nil
}
