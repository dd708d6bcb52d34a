package auth

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Username  string `json:"username" example:"alice"`
	Password  string `json:"password" example:"s3cret"`
	Firstname string `json:"firstname" example:"Alice"`
	Lastname  string `json:"lastname" example:"A"`
}
