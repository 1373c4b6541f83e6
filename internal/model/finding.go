package model

// Finding is one structured extraction result tied to its source page.
// Findings are immutable and written once to extraction_results.json.
type Finding struct {
	// SourceURL is the URL of the page the value was found on.
	SourceURL string `json:"source_url"`

	// Detector names the pattern detector that produced this finding,
	// e.g. "BTC", "ETH", "IBAN", "BENEFICIARY_NAME".
	Detector string `json:"detector"`

	// Value is the matched identifier, trimmed.
	Value string `json:"value"`

	// Context is a short snippet of surrounding text to help a reviewer
	// judge whether the match is a real payment identifier.
	Context string `json:"context"`

	// PagePath is the HTML artifact the value was extracted from,
	// relative to the run directory.
	PagePath string `json:"page_path,omitempty"`
}

// Key returns the deduplication key for a finding. Two findings with the
// same detector and value on the same page are the same finding.
func (f Finding) Key() string {
	return f.SourceURL + "|" + f.Detector + "|" + f.Value
}
