// Package ocr defines the abstraction layer for plugging OCR engines
// (Tesseract by default, cloud services if needed) into the scan
// pipeline. The interfaces are small and transport-agnostic so an
// engine's absence or misconfiguration stays substitutable and
// independently testable.
package ocr
