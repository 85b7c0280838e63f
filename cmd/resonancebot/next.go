package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/resonance-bot/internal/domain"
)

const defaultNextCount = 5

var errCountPositive = errors.New("--count must be at least 1")

func newNextCommand(root *rootOptions) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print upcoming publish times in the reference zone and UTC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNext(root, count, time.Now(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", defaultNextCount, "number of publish times to print")

	return cmd
}

// runNext prints the schedule a job started at now would follow.
func runNext(root *rootOptions, count int, now time.Time, out io.Writer) error {
	if count < 1 {
		return errCountPositive
	}

	cfg, err := loadConfig(root, false)
	if err != nil {
		return err
	}

	spec, err := domain.NewScheduleSpec(now, cfg.Schedule.ReferenceZone, cfg.Schedule.UpdateHours)
	if err != nil {
		return err
	}

	loc, err := domain.LoadZone(cfg.Schedule.ReferenceZone)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "first publish in %s, then every %s\n", spec.InitialDelay.Round(time.Second), spec.Period)

	for i, t := range spec.Upcoming(now, count) {
		fmt.Fprintf(out, "%3d  %s  %s\n",
			i+1,
			t.In(loc).Format("2006-01-02 15:04 MST"),
			t.UTC().Format(time.RFC3339),
		)
	}

	return nil
}
