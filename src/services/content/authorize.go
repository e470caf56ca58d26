package content

import (
	"context"

	"github.com/drive-clone/api/src/domain/auth"
	"github.com/drive-clone/api/src/domain/files"
)

// authorize fails closed unless the request principal is ownerID.
// The principal is placed on the context by the session middleware after
// the credential was validated; a caller-supplied owner is never trusted.
func authorize(ctx context.Context, ownerID string) error {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return files.ErrUnauthenticated
	}
	if ownerID == "" || principal.UserID != ownerID {
		return files.NewAuthorizationError("You do not have access to this resource")
	}
	return nil
}

// ensureOwned compares the stored owner of a record with the caller
func ensureOwned(entry *files.Entry, ownerID string) error {
	if entry.OwnerID != ownerID {
		return files.NewAuthorizationError("You do not have access to this item")
	}
	return nil
}
