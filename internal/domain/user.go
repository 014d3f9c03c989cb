package domain

import "strings"

// User mirrors the account record held by the backend. The password is an
// opaque string submitted as-is; the client never derives or stores it.
type User struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// Credentials carries one login attempt.
type Credentials struct {
	Username string
	Password string
}

// NewCredentials validates one login form submission.
func NewCredentials(username, password string) (Credentials, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Credentials{}, ErrInvalidUsername
	}
	if strings.TrimSpace(password) == "" {
		return Credentials{}, ErrInvalidPassword
	}
	return Credentials{Username: username, Password: password}, nil
}

// NewUser validates one sign-up form submission. Uniqueness of the username
// is enforced server-side only.
func NewUser(username, password, firstName, lastName string) (User, error) {
	creds, err := NewCredentials(username, password)
	if err != nil {
		return User{}, err
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return User{}, ErrInvalidName
	}
	return User{
		Username:  creds.Username,
		Password:  creds.Password,
		FirstName: firstName,
		LastName:  lastName,
	}, nil
}
