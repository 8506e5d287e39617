package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var salaryCmd = &cobra.Command{
	Use:   "salary [text...]",
	Short: "Print the salary assessment of a text (reads stdin without arguments)",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := getConfig()
		if err != nil {
			return fmt.Errorf("getting a config: %w", err)
		}

		var salaryConfig *SalaryConfig
		if config != nil {
			salaryConfig = config.Salary
		}

		extractor, err := newExtractor(salaryConfig)
		if err != nil {
			return err
		}

		text, err := readText(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		pretty, err := json.MarshalIndent(extractor.Assess(text), "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(salaryCmd)
}
