package auth

import (
	"github.com/google/uuid"
)

// Action is the kind of mutation an ownership check guards
type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// CheckOwnership allows principal to act on a resource owned by ownerID.
// Owners may update and delete; admins may also delete resources they do
// not own.
func CheckOwnership(principal *User, ownerID uuid.UUID, action Action) error {
	if principal == nil {
		return ErrPrincipalNotFound
	}

	if ownerID != uuid.Nil && principal.ID == ownerID {
		return nil
	}

	if action == ActionDelete && principal.IsAdmin() {
		return nil
	}

	return withCause(ErrForbidden, nil).WithMetadata(map[string]any{
		"action":   string(action),
		"user_id":  principal.ID.String(),
		"owner_id": ownerID.String(),
	})
}
