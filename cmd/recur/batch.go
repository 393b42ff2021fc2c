package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cyp0633/librecur/rrule"
)

// ruleFile is the YAML schema of a batch rules file:
//
//	rules:
//	  - name: standup
//	    rrule: FREQ=WEEKLY;BYDAY=MO,WE,FR;DTSTART=20240101T090000Z
type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Name  string `yaml:"name"`
	RRule string `yaml:"rrule"`
}

func newBatchCmd() *cobra.Command {
	var path, after, before string
	var inc bool
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Expand every rule of a YAML rules file within a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseTime(after)
			if err != nil {
				return err
			}
			to, err := parseTime(before)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read rules file: %w", err)
			}
			var file ruleFile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("failed to parse rules file: %w", err)
			}

			for _, entry := range file.Rules {
				r, err := rrule.FromString(entry.RRule)
				if err != nil {
					logger.Error("skipping rule", "name", entry.Name, "err", err)
					continue
				}
				for _, t := range r.Between(from, to, inc) {
					fmt.Printf("%s\t%s\n", entry.Name, t.Format(timeLayout))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "rules", "", "path to the YAML rules file")
	cmd.Flags().StringVar(&after, "after", "", "window start")
	cmd.Flags().StringVar(&before, "before", "", "window end")
	cmd.Flags().BoolVar(&inc, "inc", false, "include occurrences equal to a bound")
	cmd.MarkFlagRequired("rules")
	cmd.MarkFlagRequired("after")
	cmd.MarkFlagRequired("before")
	return cmd
}
