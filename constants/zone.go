package constants

// ReviewZone classifies a validation coefficient for review routing.
type ReviewZone string

// Stable values (store these exact strings in DB and export sheets).
const (
	ZoneGreen  ReviewZone = "GREEN"  // 0.8 < xi < 2.5, accepted as-is
	ZoneYellow ReviewZone = "YELLOW" // finite xi outside green and red, manual review
	ZoneRed    ReviewZone = "RED"    // xi > 10 or xi < 0.1, likely unit error
	ZoneNone   ReviewZone = "NONE"   // xi unavailable (missing inputs)
)
