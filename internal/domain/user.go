package domain

import "time"

// User is an application account. Username, email, and phone number are all
// unique and any of them can be used as the login identifier.
type User struct {
	ID uint `json:"id" gorm:"primaryKey"`

	Username    string `json:"username"     gorm:"type:varchar(150);not null;uniqueIndex"`
	Email       string `json:"email"        gorm:"type:varchar(255);not null;uniqueIndex"`
	PhoneNumber string `json:"phone_number" gorm:"type:varchar(20);uniqueIndex"`

	FirstName  string `json:"first_name"  gorm:"type:varchar(150);not null"`
	LastName   string `json:"last_name"   gorm:"type:varchar(150);not null"`
	MiddleName string `json:"middle_name" gorm:"type:varchar(150)"`

	// PasswordHash is a bcrypt hash; raw passwords are never stored.
	PasswordHash string `json:"-" gorm:"type:varchar(100);not null"`

	IsActive        bool `json:"-"                 gorm:"not null;default:true"`
	IsStaff         bool `json:"is_staff"          gorm:"not null;default:false"`
	IsEmailVerified bool `json:"is_email_verified" gorm:"not null;default:false"`
	IsPhoneVerified bool `json:"is_phone_verified" gorm:"not null;default:false"`

	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// FullName joins the name parts, skipping blanks.
func (u *User) FullName() string {
	name := u.FirstName
	if u.MiddleName != "" {
		name += " " + u.MiddleName
	}
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}

// DeviceType is the platform a device runs on.
type DeviceType string

// Supported device platforms. Web clients receive reduced listing
// projections on some endpoints.
const (
	DeviceAndroid DeviceType = "ANDROID"
	DeviceIOS     DeviceType = "IOS"
	DeviceWeb     DeviceType = "WEB"
)

// ValidDeviceType reports whether t is a known device platform.
func ValidDeviceType(t DeviceType) bool {
	switch t {
	case DeviceAndroid, DeviceIOS, DeviceWeb:
		return true
	}
	return false
}

// AppVersion is a released client version, find-or-created when devices
// register themselves.
type AppVersion struct {
	ID        uint      `json:"id"      gorm:"primaryKey"`
	Version   string    `json:"version" gorm:"type:varchar(20);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for AppVersion.
func (AppVersion) TableName() string { return "app_versions" }

// Device is a registered client installation, recorded on app launch for
// push/analytics purposes. The user reference is optional: anonymous devices
// are allowed.
type Device struct {
	ID uint `json:"id" gorm:"primaryKey"`

	DeviceModel string     `json:"device_model" gorm:"type:varchar(100)"`
	OSVersion   string     `json:"os_version"   gorm:"type:varchar(50)"`
	DeviceType  DeviceType `json:"device_type"  gorm:"type:varchar(10);not null"`
	DeviceID    string     `json:"device_id"    gorm:"type:varchar(255);not null;uniqueIndex"`
	IPAddress   string     `json:"ip_address"   gorm:"type:varchar(45)"`

	AppVersionID *uint `json:"app_version_id,omitempty"`
	UserID       *uint `json:"user_id,omitempty" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`

	AppVersion *AppVersion `json:"app_version,omitempty" gorm:"foreignKey:AppVersionID;references:ID"`
}

// TableName returns the database table name for Device.
func (Device) TableName() string { return "devices" }

// ContactType enumerates the allowed contact channel kinds.
type ContactType string

// Contact channel allow-list.
const (
	ContactPhone     ContactType = "phone"
	ContactTelegram  ContactType = "telegram"
	ContactInstagram ContactType = "instagram"
	ContactFacebook  ContactType = "facebook"
	ContactEmail     ContactType = "email"
)

// ValidContactType reports whether t is in the contact type allow-list.
func ValidContactType(t ContactType) bool {
	switch t {
	case ContactPhone, ContactTelegram, ContactInstagram, ContactFacebook, ContactEmail:
		return true
	}
	return false
}

// Contact is one entry in the flat contact directory. Plain CRUD, listed
// most-recent first, no soft delete.
type Contact struct {
	ID        uint        `json:"id"    gorm:"primaryKey"`
	Type      ContactType `json:"type"  gorm:"type:varchar(20);not null"`
	Title     string      `json:"title" gorm:"type:varchar(100);not null"`
	Value     string      `json:"value" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time   `json:"created_at"`
}

// TableName returns the database table name for Contact.
func (Contact) TableName() string { return "contacts" }
