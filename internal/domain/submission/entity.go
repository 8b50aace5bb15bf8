package submission

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"skill-intake/internal/domain/skill"
)

// MaxFieldLength matches the VARCHAR(100) columns of the users table.
const MaxFieldLength = 100

var ErrInvalid = errors.New("invalid submission")

// User is a stored profile. Email is the natural key.
type User struct {
	ID       int64
	Username string
	Email    string
	Location string
}

// Submission is a user together with its skill names in attach order.
type Submission struct {
	User   User
	Skills []string
}

// Input is a raw profile submission as received from a client.
type Input struct {
	Username string
	Email    string
	Location string
	Skills   []string
}

// Normalize trims the core fields, lower-cases the email and normalizes the
// skill list. It rejects missing username/email, malformed email and values
// wider than their columns; errors wrap ErrInvalid.
func (in Input) Normalize() (Input, error) {
	out := Input{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Location: strings.TrimSpace(in.Location),
		Skills:   skill.Normalize(in.Skills),
	}

	if out.Username == "" {
		return Input{}, fmt.Errorf("%w: username is required", ErrInvalid)
	}
	if out.Email == "" {
		return Input{}, fmt.Errorf("%w: email is required", ErrInvalid)
	}
	if !validEmail(out.Email) {
		return Input{}, fmt.Errorf("%w: email %q is not a valid address", ErrInvalid, out.Email)
	}

	fields := []struct{ name, value string }{
		{"username", out.Username},
		{"email", out.Email},
		{"location", out.Location},
	}
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > MaxFieldLength {
			return Input{}, fmt.Errorf("%w: %s exceeds %d characters", ErrInvalid, f.name, MaxFieldLength)
		}
	}
	for _, name := range out.Skills {
		if utf8.RuneCountInString(name) > skill.MaxNameLength {
			return Input{}, fmt.Errorf("%w: skill %q exceeds %d characters", ErrInvalid, name, skill.MaxNameLength)
		}
	}

	return out, nil
}

// validEmail accepts a bare addr-spec only; display names and angle
// brackets are rejected.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	if addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1
}
