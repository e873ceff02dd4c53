// cmd/tools/pattern-tool/activities.go
package main

import (
	"fmt"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/pkg/registry"

	"github.com/spf13/cobra"
)

func newActivitiesCmd() *cobra.Command {
	var (
		file     string
		taskType string
	)

	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Print the service tasks process models can call",
		Long: `Prints the activity registry: task types, input and output schemas and the
BPMN error codes each worker may throw. Without --file the built-in scoring
registry is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.Scoring()
			if file != "" {
				var err error
				if reg, err = registry.LoadRegistry(file); err != nil {
					return err
				}
			}
			if taskType == "" {
				return writeJSON(cmd.OutOrStdout(), reg)
			}
			a, ok := reg.Find(taskType)
			if !ok {
				return fmt.Errorf("no activity registered for task type %q", taskType)
			}
			return writeJSON(cmd.OutOrStdout(), a)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Registry file (.json or .yaml)")
	cmd.Flags().StringVar(&taskType, "task", "", "Only print the activity for this task type")

	return cmd
}
