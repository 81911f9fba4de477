package domain

// User Model
type User struct {
	ID       int64  `gorm:"primaryKey"`                                                                     // Primary key, the verified user identifier
	Username string `gorm:"unique;not null"`                                                                // Unique username
	Password string `gorm:"not null"`                                                                       // Hashed password
	Name     string `gorm:"size:100"`                                                                       // Display name
	Email    string `gorm:"size:100"`                                                                       // Contact email
	Role     string `gorm:"default:user"`                                                                   // Role: user or admin
	Wallet   Wallet `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"` // One-to-one relationship with Wallet
}
