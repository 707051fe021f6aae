package models

// Student is a single student record. AcademicID is the external identifier
// handed out by the institution; it is unique and never changes once the
// record exists. ID is assigned by the database.
type Student struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"size:100;not null" json:"name"`
	Email      string `gorm:"size:100;not null" json:"email"`
	AcademicID string `gorm:"column:academic_id;size:50;uniqueIndex;not null" json:"academic_id"`
}
