package ocr

import "strconv"

// Tesseract variable names understood by ocr/tesseract.
const (
	TesseractPageSegMode   = "tessedit_pageseg_mode"
	TesseractCharWhitelist = "tessedit_char_whitelist"
)

func setMetadata(in *Input, key, value string) {
	if in.Metadata == nil {
		in.Metadata = make(map[string]string)
	}
	in.Metadata[key] = value
}

// WithTesseractPSM sets the page segmentation mode (PSM) variable for Tesseract.
// See https://tesseract-ocr.github.io/tessdoc/ImproveQuality.html#page-segmentation-method for values.
func WithTesseractPSM(mode int) InputOption {
	return func(in *Input) { setMetadata(in, TesseractPageSegMode, strconv.Itoa(mode)) }
}

// WithTesseractWhitelist restricts recognition to the provided characters.
func WithTesseractWhitelist(chars string) InputOption {
	return func(in *Input) { setMetadata(in, TesseractCharWhitelist, chars) }
}
