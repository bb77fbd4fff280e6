// Package dashboard builds the landing view for a signed-in user, keyed by role.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"rollcall/internal/attendance"
)

// ErrUnsupported is returned for roles that have no dashboard yet.
var ErrUnsupported = errors.New("dashboard not supported for role")

// View is the role-specific dashboard payload.
type View struct {
	Role    string
	Classes []attendance.ClassSummary
}

// Provider builds a dashboard for one role.
type Provider interface {
	Dashboard(ctx context.Context, userID string) (View, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, userID string) (View, error)

func (f ProviderFunc) Dashboard(ctx context.Context, userID string) (View, error) {
	return f(ctx, userID)
}

// Unsupported is registered for roles that are known but not implemented.
func Unsupported(role string) Provider {
	return ProviderFunc(func(context.Context, string) (View, error) {
		return View{}, fmt.Errorf("%w: %s", ErrUnsupported, role)
	})
}

// Overviewer lists classes with their last roll date.
type Overviewer interface {
	ClassOverview(ctx context.Context) ([]attendance.ClassSummary, error)
}

// Teacher shows every class with roster size and last taken date.
func Teacher(o Overviewer) Provider {
	return ProviderFunc(func(ctx context.Context, _ string) (View, error) {
		classes, err := o.ClassOverview(ctx)
		if err != nil {
			return View{}, err
		}
		return View{Role: attendance.RoleTeacher, Classes: classes}, nil
	})
}

// Registry maps roles to providers.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry returns the standard registry: teacher implemented, student and
// admin explicitly unsupported.
func NewRegistry(o Overviewer) *Registry {
	r := &Registry{providers: map[string]Provider{}}
	r.Register(attendance.RoleTeacher, Teacher(o))
	r.Register(attendance.RoleStudent, Unsupported(attendance.RoleStudent))
	r.Register(attendance.RoleAdmin, Unsupported(attendance.RoleAdmin))
	return r
}

// Register sets the provider for role.
func (r *Registry) Register(role string, p Provider) {
	r.providers[role] = p
}

// Dashboard dispatches on role; unknown roles are unsupported too.
func (r *Registry) Dashboard(ctx context.Context, role, userID string) (View, error) {
	p, ok := r.providers[role]
	if !ok {
		return View{}, fmt.Errorf("%w: %q", ErrUnsupported, role)
	}
	return p.Dashboard(ctx, userID)
}
