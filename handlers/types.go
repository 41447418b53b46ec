// SPDX-License-Identifier: GPL-3.0-only

package handlers

// swagger:model SignupRequest
type SignupRequest struct {
	// User's first name
	// required: true
	FirstName string `json:"fname" example:"Jane"`
	// User's middle name
	MiddleName string `json:"mname" example:""`
	// User's last name
	LastName string `json:"lname" example:"Doe"`
	// User's gender
	Gender string `json:"gender" example:"Female"`
	// Date of birth in YYYY-MM-DD
	DOB string `json:"dob" example:"1990-02-03"`
	// Nationality (country name from the registry country list)
	Nationality string `json:"nationality" example:"United Arab Emirates"`
	// Country of residence
	CountryResidence string `json:"countryresidence" example:"United Arab Emirates"`
	// City of residence
	CityResidence string `json:"cityresidence" example:"Dubai"`
	// Residential address
	ResidentialAddress string `json:"residentaladdress" example:"Apt 4, Marina Walk"`
	// User's email address
	// required: true
	Email string `json:"email" example:"jane.doe@example.com"`
	// User's password
	// required: true
	Password string `json:"password" example:"MySecretPassword@123"`
	// Preferred locale
	Locale string `json:"locale" example:"en-US"`
}

// swagger:model SignupResponse
type SignupResponse struct {
	// Pending registration handle; echo it back on the phone and code steps
	PendingID string `json:"pending_id" example:"pnd_a1b2c3d4e5f67890"`
	// Current registration step
	Step string `json:"step" example:"AWAITING_PHONE"`
	// Message indicating successful operation
	Message string `json:"message" example:"Profile accepted"`
}

// swagger:model SignupPhoneRequest
type SignupPhoneRequest struct {
	// Pending registration handle
	// required: true
	PendingID string `json:"pending_id" example:"pnd_a1b2c3d4e5f67890"`
	// Country calling code without the plus sign
	// required: true
	CallingCode string `json:"country_code" example:"971"`
	// National number
	// required: true
	NationalNumber string `json:"mobile" example:"501234567"`
	// Challenge rendering hook token from the client, when the provider
	// requires one
	RecaptchaToken string `json:"recaptcha_token,omitempty"`
}

// swagger:model SignupVerifyRequest
type SignupVerifyRequest struct {
	// Pending registration handle
	// required: true
	PendingID string `json:"pending_id" example:"pnd_a1b2c3d4e5f67890"`
	// One-time code received out of band
	// required: true
	Code string `json:"code" example:"123456"`
}

// swagger:model SignupVerifyResponse
type SignupVerifyResponse struct {
	// Local identity id
	ID uint `json:"id" example:"1"`
	// Registry-assigned global user id
	GlobalUserID string `json:"global_user_id" example:"48213"`
	// Generated username
	Username string `json:"username" example:"jane.doe.4f2a91bc"`
	// Whether the email address is verified yet
	EmailVerified bool `json:"email_verified" example:"false"`
	// Authentication session token for the freshly created account
	SessionToken string `json:"session_token" example:"sample_session_token"`
	// Message indicating successful operation
	Message string `json:"message" example:"Registration complete"`
}

// swagger:model LoginRequest
type LoginRequest struct {
	// User's email address
	Email string `json:"email" example:"jane.doe@example.com"`
	// User's password
	Password string `json:"password" example:"MySecretPassword@123"`
}

// swagger:model AuthResponse
type AuthResponse struct {
	// Authentication session token.
	// Should be used in the Authorization header as a Bearer token.
	SessionToken string `json:"session_token" example:"sample_session_token"`
	// Message indicating successful operation
	Message string `json:"message" example:"Login successful"`
}

// swagger:model ForgotPasswordRequest
type ForgotPasswordRequest struct {
	// Email of the account to reset
	// required: true
	Email string `json:"email" example:"jane.doe@example.com"`
}

// swagger:model ResetPasswordRequest
type ResetPasswordRequest struct {
	// Password reset token received by email
	// required: true
	Token string `json:"token" example:"prt_a1b2c3d4e5f6789"`
	// New password
	// required: true
	Password string `json:"password" example:"MyNewPassword@456"`
}

// swagger:model GetUserResponse
type GetUserResponse struct {
	// Local identity id
	ID uint `json:"id" example:"1"`
	// Registry-assigned global user id, empty until synced
	GlobalUserID string `json:"global_user_id" example:"48213"`
	// Username
	Username string `json:"username" example:"jane.doe.4f2a91bc"`
	// Email address
	Email string `json:"email" example:"jane.doe@example.com"`
	// First name
	FirstName string `json:"fname" example:"Jane"`
	// Middle name
	MiddleName string `json:"mname" example:""`
	// Last name
	LastName string `json:"lname" example:"Doe"`
	// Gender
	Gender string `json:"gender" example:"Female"`
	// Date of birth in YYYY-MM-DD
	DOB string `json:"dob" example:"1990-02-03"`
	// Nationality
	Nationality string `json:"nationality" example:"United Arab Emirates"`
	// Country of residence
	CountryResidence string `json:"countryresidence" example:"United Arab Emirates"`
	// City of residence
	CityResidence string `json:"cityresidence" example:"Dubai"`
	// Residential address
	ResidentialAddress string `json:"residentaladdress" example:"Apt 4, Marina Walk"`
	// Locale
	Locale string `json:"locale" example:"en-US"`
	// Mobile national number
	MobileNumber string `json:"mobile" example:"501234567"`
	// Mobile country calling code
	MobileCountryCode string `json:"country_code" example:"971"`
	// Whether the email address is verified
	EmailVerified bool `json:"email_verified" example:"true"`
	// Message indicating successful retrieval
	Message string `json:"message" example:"User retrieved successfully"`
}

// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	// First name
	FirstName string `json:"fname" example:"Jane"`
	// Middle name
	MiddleName string `json:"mname" example:""`
	// Last name
	LastName string `json:"lname" example:"Doe"`
	// Gender
	Gender string `json:"gender" example:"Female"`
	// Date of birth in YYYY-MM-DD; leave empty to keep the current value
	DOB string `json:"dob" example:"1990-02-03"`
	// Nationality
	Nationality string `json:"nationality" example:"United Arab Emirates"`
	// Country of residence
	CountryResidence string `json:"countryresidence" example:"United Arab Emirates"`
	// City of residence
	CityResidence string `json:"cityresidence" example:"Dubai"`
	// Residential address
	ResidentialAddress string `json:"residentaladdress" example:"Apt 4, Marina Walk"`
	// New email address; triggers re-verification when it differs
	Email string `json:"email" example:"jane.doe@example.com"`
}

// swagger:model CountryListResponse
type CountryListResponse struct {
	// Flat list of country names for selection inputs
	Data []string `json:"data"`
	// Message indicating successful retrieval
	Message string `json:"message" example:"Countries retrieved successfully"`
}

// swagger:model GenericResponse
type GenericResponse struct {
	// Message indicating the result of the operation
	Message string `json:"message"`
}

// swagger:model PaginationDetails
type PaginationDetails struct {
	// Current page number
	Page int `json:"page"`
	// Page size
	PageSize int `json:"page_size"`
	// Total number of items
	Total int64 `json:"total"`
	// Total number of pages
	TotalPages int `json:"total_pages"`
}

// swagger:model SyncEventDetails
type SyncEventDetails struct {
	// Event ID
	EID string `json:"eid" example:"550e8400-e29b-41d4-a716-446655440000"`
	// Event category
	Category *string `json:"category" example:"REGISTER"`
	// Event status
	Status *string `json:"status" example:"SYNCED"`
	// Registry-assigned global user id involved in the event
	GlobalUserID *string `json:"global_user_id" example:"48213"`
	// Email involved in the event
	Email *string `json:"email" example:"jane.doe@example.com"`
	// Event description
	Description *string `json:"description" example:"UNIQUE constraint failed: users.email"`
	// Timestamp of when the event was created
	CreatedAt string `json:"created_at" example:"2023-10-01T12:00:00Z"`
}

// swagger:model SyncEventListResponse
type SyncEventListResponse struct {
	// List of sync events
	Data []SyncEventDetails `json:"data"`
	// Pagination details
	Pagination PaginationDetails `json:"pagination"`
	// Message indicating successful retrieval
	Message string `json:"message" example:"Sync events retrieved successfully"`
}
