package models

type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"unique;not null"`
	Email    string `json:"email" gorm:"unique;not null"`
	Password string `json:"-"` // Store hashed password
	Role     string `json:"role" gorm:"default:user"`
	FarmID   *uint  `json:"farm_id"`
}
