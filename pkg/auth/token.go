package auth

import (
	"log/slog"
	"time"
)

// Token is a bearer token issued by the identity endpoint.
//
// Token implements fmt.Stringer and slog.LogValuer so that printing or
// logging it never reveals the access token.
type Token struct {
	AccessToken string
	Expiry      time.Time
}

// Valid reports whether the token is usable at now, treating it as expired
// skew before its actual expiry. A zero Expiry never expires.
func (t Token) Valid(now time.Time, skew time.Duration) bool {
	if t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return now.Add(skew).Before(t.Expiry)
}

// AuthorizationHeader returns the value for the Authorization header.
func (t Token) AuthorizationHeader() string {
	return "Bearer " + t.AccessToken
}

// String returns a masked representation of the token.
func (t Token) String() string {
	if t.AccessToken == "" {
		return "Token(empty)"
	}
	if t.Expiry.IsZero() {
		return "Token(***)"
	}
	return "Token(***, expires " + t.Expiry.UTC().Format(time.RFC3339) + ")"
}

// LogValue implements slog.LogValuer.
func (t Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("access_token", "***"),
		slog.Time("expiry", t.Expiry),
	)
}
