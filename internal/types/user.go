package types

// User holds the profile of a contributor, keyed by the stable Google
// subject id. Rows are provisioned on first successful token verification.
type User struct {
	GoogleID  string `gorm:"primaryKey;column:google_id" json:"google_id"`
	Email     string `gorm:"uniqueIndex;not null;column:email" json:"email"`
	FirstName string `gorm:"not null;column:first_name" json:"first_name"`

	Contributions []UserData `gorm:"foreignKey:GoogleID;references:GoogleID" json:"-"`
}

func (User) TableName() string {
	return "user"
}
