package immo

import "encoding/json"

// Role names as the server knows them. Seller and buyer keep the
// platform's French identifiers.
const (
	RoleAdmin  = "admin"
	RoleSeller = "vendeur"
	RoleBuyer  = "acheteur"
)

// Verification statuses shared by users, properties and documents.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// Envelope is the wire shape of every API response:
// {success, message, data}.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Page is the server's paginator wrapper for list endpoints.
type Page[T any] struct {
	CurrentPage int `json:"current_page"`
	Items       []T `json:"data"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Role is a named role granted to a user.
type Role struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	GuardName string `json:"guard_name"`
}

// User is the server's projection of an account. Treated as an opaque,
// immutable-per-fetch value object: the client only reads it for role
// checks and display.
type User struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name,omitempty"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	BirthDate          string `json:"birth_date,omitempty"`
	Gender             string `json:"gender,omitempty"`
	VerificationStatus string `json:"verification_status"`
	RejectionReason    string `json:"rejection_reason,omitempty"`
	VerifiedAt         string `json:"verified_at,omitempty"`
	VerifiedBy         int    `json:"verified_by,omitempty"`
	IsActive           bool   `json:"is_active"`
	LastLoginAt        string `json:"last_login_at,omitempty"`
	Roles              []Role `json:"roles,omitempty"`
	CreatedAt          string `json:"created_at,omitempty"`
	UpdatedAt          string `json:"updated_at,omitempty"`
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}

	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}

	return false
}

func (u *User) IsAdmin() bool  { return u.HasRole(RoleAdmin) }
func (u *User) IsSeller() bool { return u.HasRole(RoleSeller) }
func (u *User) IsBuyer() bool  { return u.HasRole(RoleBuyer) }

// LoginRequest is the /auth/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the /auth/register body.
type RegisterRequest struct {
	Name                 string `json:"name"`
	FirstName            string `json:"first_name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"role"`
}

// AuthPayload is the data half of a successful login, register or
// refresh response.
type AuthPayload struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

// PropertyType categorizes a listing (house, apartment, plot, ...).
type PropertyType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// PropertyFeature is an amenity tag attachable to a listing.
type PropertyFeature struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Department, Commune, Arrondissement and Town form the
// administrative-division hierarchy used by addresses.
type Department struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type Commune struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DepartmentID int    `json:"department_id"`
}

type Arrondissement struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CommuneID int    `json:"commune_id"`
}

type Town struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	ArrondissementID int    `json:"arrondissement_id"`
}

// Address locates a property within the division hierarchy.
type Address struct {
	ID               int             `json:"id"`
	StreetAddress    string          `json:"street_address"`
	DepartmentID     int             `json:"department_id"`
	CommuneID        int             `json:"commune_id"`
	ArrondissementID int             `json:"arrondissement_id,omitempty"`
	TownID           int             `json:"town_id,omitempty"`
	Latitude         float64         `json:"latitude,omitempty"`
	Longitude        float64         `json:"longitude,omitempty"`
	Department       *Department     `json:"department,omitempty"`
	Commune          *Commune        `json:"commune,omitempty"`
	Arrondissement   *Arrondissement `json:"arrondissement,omitempty"`
	Town             *Town           `json:"town,omitempty"`
}

// PropertyImage is a photo attached to a listing.
type PropertyImage struct {
	ID         int    `json:"id"`
	PropertyID int    `json:"property_id"`
	Name       string `json:"name"`
	FilePath   string `json:"file_path"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	FileSize   int64  `json:"file_size"`
	AltText    string `json:"alt_text,omitempty"`
	Caption    string `json:"caption,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	SortOrder  int    `json:"sort_order"`
	IsMain     bool   `json:"is_main"`
	IsFeatured bool   `json:"is_featured"`
	IsActive   bool   `json:"is_active"`
}

// DocumentType categorizes uploaded documents (deed, permit, ID, ...).
type DocumentType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Document is a verification document attached to a user or property.
type Document struct {
	ID               int           `json:"id"`
	DocumentableType string        `json:"documentable_type"`
	DocumentableID   int           `json:"documentable_id"`
	DocumentTypeID   int           `json:"document_type_id"`
	Name             string        `json:"name"`
	FilePath         string        `json:"file_path"`
	FileName         string        `json:"file_name"`
	MimeType         string        `json:"mime_type"`
	FileSize         int64         `json:"file_size"`
	Hash             string        `json:"hash"`
	Description      string        `json:"description,omitempty"`
	Status           string        `json:"status"`
	DocumentType     *DocumentType `json:"document_type,omitempty"`
}

// Property statuses.
const (
	PropertyAvailable           = "available"
	PropertySold                = "sold"
	PropertyPendingVerification = "pending_verification"
	PropertyRejected            = "rejected"
)

// Property is a listing as the server returns it.
type Property struct {
	ID              int             `json:"id"`
	Reference       string          `json:"reference,omitempty"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	PropertyTypeID  int             `json:"property_type_id"`
	Price           float64         `json:"price"`
	SurfaceArea     float64         `json:"surface_area"`
	Rooms           int             `json:"rooms,omitempty"`
	Bedrooms        int             `json:"bedrooms,omitempty"`
	Bathrooms       int             `json:"bathrooms,omitempty"`
	Floors          int             `json:"floors,omitempty"`
	YearBuilt       int             `json:"year_built,omitempty"`
	IsFurnished     bool            `json:"is_furnished,omitempty"`
	HasParking      bool            `json:"has_parking,omitempty"`
	HasGarden       bool            `json:"has_garden,omitempty"`
	HasPool         bool            `json:"has_pool,omitempty"`
	HasBalcony      bool            `json:"has_balcony,omitempty"`
	HasElevator     bool            `json:"has_elevator,omitempty"`
	AddressID       int             `json:"address_id"`
	OwnerID         int             `json:"owner_id"`
	Status          string          `json:"status"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	IsVerified      bool            `json:"is_verified"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       string          `json:"created_at,omitempty"`
	UpdatedAt       string          `json:"updated_at,omitempty"`
	PropertyType    *PropertyType   `json:"property_type,omitempty"`
	Address         *Address        `json:"address,omitempty"`
	Owner           *User           `json:"owner,omitempty"`
	Images          []PropertyImage `json:"images,omitempty"`
	Documents       []Document      `json:"documents,omitempty"`
}

// PropertyRequest is the body for creating or updating a listing.
type PropertyRequest struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	PropertyTypeID   int     `json:"property_type_id"`
	Price            float64 `json:"price"`
	SurfaceArea      float64 `json:"surface_area"`
	Rooms            int     `json:"rooms,omitempty"`
	Bedrooms         int     `json:"bedrooms,omitempty"`
	Bathrooms        int     `json:"bathrooms,omitempty"`
	Floors           int     `json:"floors,omitempty"`
	YearBuilt        int     `json:"year_built,omitempty"`
	IsFurnished      bool    `json:"is_furnished,omitempty"`
	HasParking       bool    `json:"has_parking,omitempty"`
	HasGarden        bool    `json:"has_garden,omitempty"`
	HasPool          bool    `json:"has_pool,omitempty"`
	HasBalcony       bool    `json:"has_balcony,omitempty"`
	HasElevator      bool    `json:"has_elevator,omitempty"`
	StreetAddress    string  `json:"street_address"`
	DepartmentID     int     `json:"department_id"`
	CommuneID        int     `json:"commune_id"`
	ArrondissementID int     `json:"arrondissement_id,omitempty"`
	TownID           int     `json:"town_id,omitempty"`
	Latitude         float64 `json:"latitude,omitempty"`
	Longitude        float64 `json:"longitude,omitempty"`
}

// Service is a professional service offered through the platform
// (surveys, notary work, valuations, ...).
type Service struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// ServiceRequest is a buyer's or seller's request for a service.
type ServiceRequest struct {
	ID          int      `json:"id"`
	ServiceID   int      `json:"service_id"`
	UserID      int      `json:"user_id"`
	PropertyID  int      `json:"property_id,omitempty"`
	Status      string   `json:"status"`
	Notes       string   `json:"notes,omitempty"`
	QuotedPrice float64  `json:"quoted_price,omitempty"`
	Service     *Service `json:"service,omitempty"`
	User        *User    `json:"user,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// PropertyInterest records a buyer's declared interest in a listing.
type PropertyInterest struct {
	ID         int       `json:"id"`
	PropertyID int       `json:"property_id"`
	UserID     int       `json:"user_id"`
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	Property   *Property `json:"property,omitempty"`
	User       *User     `json:"user,omitempty"`
	CreatedAt  string    `json:"created_at,omitempty"`
	UpdatedAt  string    `json:"updated_at,omitempty"`
}

// UserStatistics is the admin dashboard's user breakdown.
type UserStatistics struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Verified int `json:"verified"`
	Rejected int `json:"rejected"`
	Sellers  int `json:"sellers"`
	Buyers   int `json:"buyers"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// InterestStatistics is the interest dashboard breakdown.
type InterestStatistics struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Accepted  int `json:"accepted"`
	Declined  int `json:"declined"`
	ThisMonth int `json:"this_month"`
}
