package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wudi/docscan"
	"github.com/wudi/docscan/pipeline"
	"github.com/wudi/docscan/render"
)

var (
	scanFile   string
	scanOut    string
	scanReport string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan from the camera or an image file",
	Long: "scan captures a frame from the configured camera, or decodes the\n" +
		"file given with --file, runs it through the document pipeline and\n" +
		"prints the recognized text.",
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanFile, "file", "f", "", "scan this image file instead of the camera")
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "write the scanned page image to this file (.png, .jpg)")
	scanCmd.Flags().StringVar(&scanReport, "report", "", "write an HTML report to this file")
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	svc, err := docscan.New(cfg, docscan.WithLogger(log))
	if err != nil {
		return err
	}
	defer svc.Close()

	req := docscan.ScanRequest{Source: docscan.SourceCamera}
	if scanFile != "" {
		payload, err := os.ReadFile(scanFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", scanFile, err)
		}
		req = docscan.ScanRequest{Source: docscan.SourceUpload, Payload: payload}
	}

	res, err := svc.RunScan(cmd.Context(), req)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "scan %s: %s\n", res.ID, res.Status)
	if res.FailedStage != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "degraded at %s: %s\n", res.FailedStage, res.Reason)
	}
	if res.PlainText != "" {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), res.PlainText)
	}

	if scanOut != "" {
		if err := writeImage(res, scanOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", scanOut)
	}
	if scanReport != "" {
		html, err := render.HTML(res)
		if err != nil {
			return err
		}
		if err := os.WriteFile(scanReport, html, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", scanReport)
	}
	return nil
}

func writeImage(res *pipeline.Result, path string) error {
	if res.Image == nil {
		return fmt.Errorf("scan %s produced no image", res.ID)
	}
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		data, err = res.Image.EncodeJPEG(90)
	default:
		data, err = res.Image.EncodePNG()
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}
