package models

// Device is a registered edge unit. The id is assigned by the device itself,
// not generated by the store. FarmID is optional; a device may be orphaned
// when its farm is deleted.
type Device struct {
	ID     string `json:"id" gorm:"primaryKey"`
	FarmID *uint  `json:"farm_id"`
}
