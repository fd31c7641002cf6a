package models

import (
	"fmt"
	"time"
)

// User represents a local account linked to a Spotify profile.
//
// The Spotify credential pair lives on the user record: it is always either
// absent (both tokens empty) or complete, and is overwritten in place when a
// refresh succeeds.
type User struct {
	entity
	spotifyID    string
	displayName  string
	email        string
	market       string
	accessToken  string
	refreshToken string
	tokenExpiry  time.Time
}

// NewUser creates a user linked to the given Spotify profile.
func NewUser(sequence int, spotifyID, displayName, email, market string) *User {
	return &User{
		entity:      newEntity(sequence),
		spotifyID:   spotifyID,
		displayName: displayName,
		email:       email,
		market:      market,
	}
}

func (u *User) SpotifyID() string      { return u.spotifyID }
func (u *User) DisplayName() string    { return u.displayName }
func (u *User) Email() string          { return u.email }
func (u *User) Market() string         { return u.market }
func (u *User) AccessToken() string    { return u.accessToken }
func (u *User) RefreshToken() string   { return u.refreshToken }
func (u *User) TokenExpiry() time.Time { return u.tokenExpiry }

// Connected reports whether the user has a stored Spotify credential.
func (u *User) Connected() bool { return u.accessToken != "" }

// SetProfile updates the Spotify profile fields.
func (u *User) SetProfile(displayName, email, market string) {
	u.displayName = displayName
	u.email = email
	if market != "" {
		u.market = market
	}
}

// SetTokens stores a credential pair. Both tokens must be present; a user is
// never left with an access token but no refresh token.
func (u *User) SetTokens(access, refresh string, expiry time.Time) error {
	if access == "" || refresh == "" {
		return fmt.Errorf("credential pair must be complete")
	}
	u.accessToken = access
	u.refreshToken = refresh
	u.tokenExpiry = expiry
	return nil
}

// ClearTokens removes the stored credential pair.
func (u *User) ClearTokens() {
	u.accessToken = ""
	u.refreshToken = ""
	u.tokenExpiry = time.Time{}
}

// Validate checks that required fields are present and the credential
// invariant holds.
func (u *User) Validate() error {
	if u.spotifyID == "" {
		return fmt.Errorf("spotify id is required")
	}
	if (u.accessToken == "") != (u.refreshToken == "") {
		return fmt.Errorf("credential pair must be complete or absent")
	}
	return nil
}
