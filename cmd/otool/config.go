package main

import (
	"fmt"
	"os"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the stored configuration",
}

var configImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import configuration objects from a YAML file",
	Long: `Import platforms, tasks, task variants, jdk versions, build providers and
projects from a YAML document. Objects are upserted in one transaction; an
invalid document changes nothing.

Example:
  otool config import -f otool-config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, _ := cmd.Flags().GetString("file")
		raw, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %v", err)
		}

		var data types.SnapshotData
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return fmt.Errorf("failed to parse YAML: %v", err)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Import(data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d platforms, %d tasks, %d task variants, %d jdk versions, %d build providers, %d projects\n",
			len(data.Platforms), len(data.Tasks), len(data.TaskVariants), len(data.JDKVersions), len(data.BuildProviders), len(data.Projects))
		return nil
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		data, err := a.store.Export()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	},
}

var configBackupCmd = &cobra.Command{
	Use:   "backup PATH",
	Short: "Write a consistent copy of the configuration database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Backup(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", args[0])
		return nil
	},
}

func init() {
	configImportCmd.Flags().StringP("file", "f", "", "YAML file to import (required)")
	_ = configImportCmd.MarkFlagRequired("file")

	configCmd.AddCommand(configImportCmd)
	configCmd.AddCommand(configExportCmd)
	configCmd.AddCommand(configBackupCmd)
}
