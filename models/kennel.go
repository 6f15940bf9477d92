package models

// Kennel is a physical housing unit. Number is the human-facing id painted on
// the kennel itself; it is assigned once at creation (highest existing + 1)
// and never changes. Occupancy must always agree with the Dog holding the
// kennel reference.
type Kennel struct {
	BaseModel
	Number     int  `gorm:"uniqueIndex;not null" json:"kennel_id"`
	IsOccupied bool `gorm:"default:false" json:"is_occupied"`
}
