package auth

import "context"

type contextKey struct{}

// Viewer identifies the authenticated caller for the current request.
// VendorID is empty for users without a vendor profile.
type Viewer struct {
	UserID    string
	VendorID  string
	Admin     bool
	SessionID int64
}

func WithViewer(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, contextKey{}, v)
}

func FromContext(ctx context.Context) (Viewer, bool) {
	v, ok := ctx.Value(contextKey{}).(Viewer)
	return v, ok
}

func UserID(ctx context.Context) string {
	v, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return v.UserID
}

func VendorID(ctx context.Context) string {
	v, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return v.VendorID
}

func IsAdmin(ctx context.Context) bool {
	v, ok := FromContext(ctx)
	if !ok {
		return false
	}
	return v.Admin
}
