package testutil

import (
	"net/http"

	"digipraman/pkg/requestcontext"
)

// WithAuth adds the authenticated subject and role to the request context.
// This simulates what the auth middleware does for bearer-token requests.
func WithAuth(req *http.Request, userID, role string) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}
