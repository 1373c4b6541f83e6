package extract

import "fmt"

// DetectorError reports a single detector failing on a single page.
// Detector errors are recoverable: the engine logs them and keeps the
// findings from every other detector and page.
type DetectorError struct {
	// Detector is the name of the detector that failed.
	Detector string

	// PagePath is the artifact being scanned when it failed.
	PagePath string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *DetectorError) Error() string {
	return fmt.Sprintf("detector %s failed on %s: %v", e.Detector, e.PagePath, e.Err)
}

// Unwrap returns the underlying error.
func (e *DetectorError) Unwrap() error {
	return e.Err
}
