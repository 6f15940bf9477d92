package models

import "time"

// DogStatus tracks a case along its lifecycle. Transitions only move forward:
// Adopted -> Available -> UnderTreatment -> Operated -> FitForRelease ->
// Dispatched -> Released. "Adopted" means intake recorded, not rehoming.
type DogStatus string

const (
	StatusAdopted        DogStatus = "Adopted"
	StatusAvailable      DogStatus = "Available"
	StatusUnderTreatment DogStatus = "UnderTreatment"
	StatusOperated       DogStatus = "Operated"
	StatusFitForRelease  DogStatus = "FitForRelease"
	StatusDispatched     DogStatus = "Dispatched"
	StatusReleased       DogStatus = "Released"
)

// Catcher holds the capture metadata recorded at intake, owned by exactly one
// Dog and mutable only through an explicit update.
type Catcher struct {
	BaseModel
	UserID            *uint      `json:"-"`
	User              *User      `gorm:"foreignKey:UserID" json:"catcher,omitempty"`
	CatchingLocation  string     `gorm:"type:varchar(255)" json:"catching_location"`
	LocationDetails   string     `gorm:"type:text" json:"location_details"`
	ReleasingLocation string     `gorm:"type:varchar(255)" json:"releasing_location"`
	CatchingDate      *time.Time `json:"catching_date"`
}

// Doctor holds the veterinary record. Created on the first vet submission for
// a case and updated in place afterwards, never re-created.
type Doctor struct {
	BaseModel
	UserID        *uint      `json:"-"`
	User          *User      `gorm:"foreignKey:UserID" json:"vet,omitempty"`
	DogWeight     float64    `json:"dog_weight"`
	Temperature   float64    `json:"temperature"`
	SkinCondition string     `gorm:"type:varchar(255)" json:"skin_condition"`
	SurgeryDate   *time.Time `json:"surgery_date"`
	Procedure     string     `gorm:"type:varchar(255)" json:"procedure"`
	EarNotched    string     `gorm:"type:varchar(50)" json:"ear_notched"`
	Observations  string     `gorm:"type:text" json:"observations"`
	ARV           bool       `json:"arv"`

	// Medicines form
	Xylazine     string `gorm:"type:varchar(50)" json:"xylazine"`
	Dexa         string `gorm:"type:varchar(50)" json:"dexa"`
	Melonex      string `gorm:"type:varchar(50)" json:"melonex"`
	Atropine     string `gorm:"type:varchar(50)" json:"atropine"`
	Enrodac      string `gorm:"type:varchar(50)" json:"enrodac"`
	Prednisolone string `gorm:"type:varchar(50)" json:"prednisolone"`
	Ketamin      string `gorm:"type:varchar(50)" json:"ketamin"`
	Stadren      string `gorm:"type:varchar(50)" json:"stadren"`
	Dicrysticin  string `gorm:"type:varchar(50)" json:"dicrysticin"`

	SurgeryPhoto     string   `gorm:"type:varchar(255)" json:"surgery_photo"`
	AdditionalPhotos []string `gorm:"serializer:json" json:"additional_photos"`

	SurgeryNotesPhoto     string   `gorm:"type:varchar(255)" json:"surgery_notes_photo"`
	AdditionalNotesPhotos []string `gorm:"serializer:json" json:"additional_notes_photos"`
}

// CareTaker links a case to its assigned caretaker and owns the daily
// monitoring reports in chronological insertion order.
type CareTaker struct {
	BaseModel
	UserID  *uint             `json:"-"`
	User    *User             `gorm:"foreignKey:UserID" json:"care_taker,omitempty"`
	Reports []DailyMonitoring `gorm:"foreignKey:CareTakerID" json:"reports"`
}

// DailyMonitoring is one day's post-operative care entry. Immutable once
// created.
type DailyMonitoring struct {
	BaseModel
	CareTakerID  uint       `json:"-"`
	FoodIntake   string     `gorm:"type:varchar(100)" json:"food_intake"`
	WaterIntake  string     `gorm:"type:varchar(100)" json:"water_intake"`
	Antibiotics  string     `gorm:"type:varchar(100)" json:"antibiotics"`
	Painkiller   string     `gorm:"type:varchar(100)" json:"painkiller"`
	Stool        string     `gorm:"type:varchar(100)" json:"stool"`
	Observations string     `gorm:"type:text" json:"observations"`
	Photo        string     `gorm:"type:varchar(255)" json:"photo"`
	Date         *time.Time `json:"date"`
}

// Dog is one rescue case from capture to release. The case number is unique
// and immutable after creation. KennelID is held only while the dog actually
// occupies a kennel; releasing the dog clears it in the same transaction that
// frees the kennel.
type Dog struct {
	BaseModel
	CaseNumber string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"case_number"`
	Status     DogStatus `gorm:"type:varchar(20);default:'Adopted'" json:"status"`

	KennelID *uint   `json:"-"`
	Kennel   *Kennel `gorm:"foreignKey:KennelID" json:"kennel,omitempty"`

	// Initial observation data
	DogName             string   `gorm:"type:varchar(100)" json:"dog_name"`
	DogImage            string   `gorm:"type:varchar(255)" json:"dog_image"`
	DogAdditionalImages []string `gorm:"serializer:json" json:"dog_additional_images"`
	Breed               string   `gorm:"type:varchar(100)" json:"breed"`
	Age                 int      `json:"age"`
	MainColor           string   `gorm:"type:varchar(50)" json:"main_color"`
	Description         string   `gorm:"type:text" json:"description"`
	Gender              string   `gorm:"type:varchar(20)" json:"gender"`
	Aggression          bool     `json:"aggression"`

	KennelPhoto            string   `gorm:"type:varchar(255)" json:"kennel_photo"`
	AdditionalKennelPhotos []string `gorm:"serializer:json" json:"additional_kennel_photos"`

	// Release form data
	IsReleased      bool       `gorm:"default:false" json:"is_released"`
	IsDispatched    bool       `gorm:"default:false" json:"is_dispatched"`
	ReleaseDate     *time.Time `json:"release_date"`
	ReleaseLocation string     `gorm:"type:varchar(255)" json:"release_location"`

	CatcherDetailsID   *uint      `json:"-"`
	CatcherDetails     *Catcher   `gorm:"foreignKey:CatcherDetailsID" json:"catcher_details,omitempty"`
	VetDetailsID       *uint      `json:"-"`
	VetDetails         *Doctor    `gorm:"foreignKey:VetDetailsID" json:"vet_details,omitempty"`
	CareTakerDetailsID *uint      `json:"-"`
	CareTakerDetails   *CareTaker `gorm:"foreignKey:CareTakerDetailsID" json:"care_taker_details,omitempty"`
}
