package constants

// DocStatus is the canonical routing status for a processed document.
type DocStatus string

// Stable values (store these exact strings in DB).
const (
	DocStatusQueued       DocStatus = "QUEUED"        // waiting for processing
	DocStatusRunning      DocStatus = "RUNNING"       // in progress
	DocStatusExtracted    DocStatus = "EXTRACTED"     // specimens extracted and validated
	DocStatusManualReview DocStatus = "MANUAL_REVIEW" // model returned zero specimens; needs a human pass
	DocStatusExcluded     DocStatus = "EXCLUDED"      // model judged the paper out of scope
	DocStatusFailed       DocStatus = "FAILED"        // terminal failure
)
