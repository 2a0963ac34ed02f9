// Package render turns a scan result into a human-readable report for
// the web layer: Markdown first, HTML via goldmark on top.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/wudi/docscan/pipeline"
)

// Markdown renders res as a Markdown report: status, what degraded (if
// anything), and the recognized text in reading order.
func Markdown(res *pipeline.Result) string {
	var b strings.Builder
	b.WriteString("# Scan Report\n\n")
	fmt.Fprintf(&b, "- Scan: `%s`\n", res.ID)
	fmt.Fprintf(&b, "- Status: **%s**\n", res.Status)
	if !res.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "- Finished: %s\n", res.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	if res.Status == pipeline.StatusSuccess && len(res.Blocks) > 0 {
		fmt.Fprintf(&b, "- Confidence: %.0f%%\n", res.MeanConfidence*100)
	}
	if note := degradeNote(res); note != "" {
		fmt.Fprintf(&b, "\n> %s\n", note)
	}

	if len(res.Blocks) > 0 {
		b.WriteString("\n## Recognized Text\n")
		for _, block := range res.Blocks {
			fmt.Fprintf(&b, "\n%s\n", block.Text)
		}
	} else if res.Status == pipeline.StatusSuccess {
		b.WriteString("\n_No text detected on the page._\n")
	}
	return b.String()
}

// HTML converts the Markdown report to HTML.
func HTML(res *pipeline.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(res)), &buf); err != nil {
		return nil, fmt.Errorf("render: convert report: %w", err)
	}
	return buf.Bytes(), nil
}

// degradeNote maps a degraded run to the operator-facing explanation.
func degradeNote(res *pipeline.Result) string {
	switch res.FailedStage {
	case pipeline.StageCapturing:
		return fmt.Sprintf("Capture failed: %s. No image is available.", res.Reason)
	case pipeline.StageDetecting, pipeline.StageRectifying:
		return fmt.Sprintf("Document edges not found (%s); showing the raw photo.", res.Reason)
	case pipeline.StageEnhancing:
		return fmt.Sprintf("Image enhancement failed (%s); showing the rectified photo.", res.Reason)
	case pipeline.StageExtracting:
		return fmt.Sprintf("Text extraction failed (%s); the scanned image was kept.", res.Reason)
	}
	return ""
}
