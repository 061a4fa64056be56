package session

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Auth-provider tags record which channel authenticated the principal.
const (
	ProviderPhone     = "phone"
	ProviderMicrosoft = "microsoft"
	ProviderEmail     = "email"
)

// User is the application's local representation of who is logged in,
// independent of the identity provider's own session.
type User struct {
	UID          string        `json:"uid"`
	Email        string        `json:"email"`
	PhoneNumber  string        `json:"phoneNumber"`
	DisplayName  string        `json:"displayName"`
	Role         string        `json:"role"`
	OrgRoleID    string        `json:"roleId"`
	AuthProvider string        `json:"authProvider"`
	Org          OrgProperties `json:"customProperties"`
}

// OrgProperties is the nested bag of organization-specific fields
// copied from the directory record.
type OrgProperties struct {
	Organization  string `json:"organization"`
	AccessLevel   string `json:"accessLevel"`
	EmployeeID    string `json:"employeeId"`
	Department    string `json:"department"`
	Designation   string `json:"designation"`
	DateOfJoining string `json:"dateOfJoining"`
	DateOfBirth   string `json:"dateOfBirth"`
}

// Initial returns the display-name initial used for the derived avatar.
func (u *User) Initial() string {
	name := strings.TrimSpace(u.DisplayName)
	if name == "" {
		name = strings.TrimSpace(u.Email)
	}
	for _, r := range name {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

// AvatarImage renders a single-letter avatar as an inline SVG data URI.
func (u *User) AvatarImage() string {
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="64" height="64"><rect width="64" height="64" rx="32" fill="#4f46e5"/><text x="32" y="42" font-family="sans-serif" font-size="30" fill="#fff" text-anchor="middle">%s</text></svg>`, u.Initial())
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

// MintToken encodes the user identifier and the current time into an
// opaque marker. It carries no signature and is never verified; its
// presence alongside a stored user is what gates "is logged in".
func MintToken(uid string, now time.Time) string {
	raw := uid + "|" + strconv.FormatInt(now.UnixMilli(), 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// TokenUID extracts the user identifier from a minted token. Used only
// by diagnostics; the token is not a credential.
func TokenUID(token string) (string, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", false
	}
	uid, _, ok := strings.Cut(string(raw), "|")
	if !ok || uid == "" {
		return "", false
	}
	return uid, true
}
