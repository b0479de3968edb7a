// Package ocr defines the OCR collaborator used by the searchify scheduler:
// the result (annotation) model, a small blocking Engine contract that
// concrete backends such as Tesseract implement, and AsyncService, which turns
// an Engine into the callback-based, disconnectable service the scheduler
// consumes.
package ocr
