package constants

// SectionFamily identifies the cross-section geometry of a specimen and
// selects the area formula branch during validation.
type SectionFamily string

// Stable values (store these exact strings in DB and export sheets).
const (
	FamilyRectangular SectionFamily = "RECTANGULAR"
	FamilyCircular    SectionFamily = "CIRCULAR"
	FamilyRoundEnded  SectionFamily = "ROUND_ENDED"
)

// Families lists all section families in export sheet order.
var Families = []SectionFamily{FamilyRectangular, FamilyCircular, FamilyRoundEnded}

// SheetName returns the worksheet title used for this family's export sheet.
func (f SectionFamily) SheetName() string {
	switch f {
	case FamilyRectangular:
		return "Rectangular"
	case FamilyCircular:
		return "Circular"
	case FamilyRoundEnded:
		return "Round-Ended"
	default:
		return string(f)
	}
}
