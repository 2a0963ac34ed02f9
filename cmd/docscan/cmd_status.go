package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wudi/docscan"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the configured camera",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		svc, err := docscan.New(cfg, docscan.WithLogger(log))
		if err != nil {
			return err
		}
		defer svc.Close()

		if svc.CheckCameraAvailable() {
			fmt.Fprintf(cmd.OutOrStdout(), "camera %d: available\n", cfg.Capture.Device)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "camera %d: not available\n", cfg.Capture.Device)
		return nil
	},
}
