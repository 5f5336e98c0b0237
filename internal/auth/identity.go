package auth

import (
	"github.com/labstack/echo/v4"

	apperrors "notehub/internal/errors"
	"notehub/internal/model"
)

// ContextKey is where the auth middleware stores the verified claims.
const ContextKey = "user"

// Identity is the authenticated caller resolved from the session token.
type Identity struct {
	UserID uint
	Email  string
}

// FromContext resolves the caller's identity from the claims placed on the
// echo context by the auth middleware. Returns ErrUnauthenticated when no
// valid token is present.
func FromContext(c echo.Context) (*Identity, error) {
	claims, ok := c.Get(ContextKey).(*Claims)
	if !ok || claims.UserID == 0 {
		return nil, apperrors.ErrUnauthenticated
	}
	return &Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// RequireOwnership fails with ErrForbidden unless the identity owns the note.
func RequireOwnership(note *model.Note, ident *Identity) error {
	if ident == nil {
		return apperrors.ErrUnauthenticated
	}
	if note.OwnerID != ident.UserID {
		return apperrors.ErrForbidden
	}
	return nil
}
