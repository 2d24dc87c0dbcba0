package middleware

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/curalink/telehealth/session-gateway/internal/adapters/metrics"
	"github.com/curalink/telehealth/session-gateway/internal/core/domain"
	"github.com/curalink/telehealth/session-gateway/internal/core/ports"
	"github.com/curalink/telehealth/session-gateway/internal/core/services"
)

// Variant names the predicate a guarded prefix requires.
type Variant string

const (
	VariantAuthenticated Variant = "authenticated"
	VariantAdmin         Variant = "admin"
	VariantDoctor        Variant = "doctor"
	VariantPatient       Variant = "patient"
)

type DecisionKind int

const (
	DecisionAllow DecisionKind = iota
	// DecisionWait means the session is still restoring: the caller
	// should hold a loading state, not redirect. Redirecting here
	// would race a valid session into the login page.
	DecisionWait
	DecisionRedirect
)

type Decision struct {
	Kind    DecisionKind
	Target  string
	Message string
}

const (
	loginPath = "/login"
	homePath  = "/"

	msgDoctorNotApproved = "your doctor account is awaiting approval"
)

// Decide is the pure guard core. hasStoredCredential only matters for
// an anonymous session whose restoration has not completed: credential
// material in the store means the session manager may still catch up,
// so the guard waits instead of redirecting. The wait is bounded by
// restoration finishing, never by a timer.
func Decide(state ports.SessionState, id domain.Identity, hasStoredCredential bool, variant Variant) Decision {
	switch state {
	case ports.StateUninitialized, ports.StateRestoring:
		return Decision{Kind: DecisionWait}

	case ports.StateAnonymous:
		if hasStoredCredential {
			return Decision{Kind: DecisionWait}
		}
		return Decision{Kind: DecisionRedirect, Target: loginPath}

	case ports.StateAuthenticated:
		switch variant {
		case VariantAuthenticated:
			return Decision{Kind: DecisionAllow}
		case VariantAdmin:
			if id.Role == domain.RoleAdmin {
				return Decision{Kind: DecisionAllow}
			}
			return Decision{Kind: DecisionRedirect, Target: homePath}
		case VariantDoctor:
			if id.IsApprovedDoctor() {
				return Decision{Kind: DecisionAllow}
			}
			if id.Role == domain.RoleDoctor {
				// Right role, not yet approved: send back to login
				// with an explanation rather than a silent bounce home.
				return Decision{Kind: DecisionRedirect, Target: loginPath, Message: msgDoctorNotApproved}
			}
			return Decision{Kind: DecisionRedirect, Target: homePath}
		case VariantPatient:
			if id.Role == domain.RolePatient {
				return Decision{Kind: DecisionAllow}
			}
			return Decision{Kind: DecisionRedirect, Target: homePath}
		}
	}

	return Decision{Kind: DecisionRedirect, Target: loginPath}
}

type contextKey string

const (
	IdentityKey contextKey = "identity"
	UserIDKey   contextKey = "userID"
	RoleKey     contextKey = "role"
)

// Guard enforces guard variants on HTTP routes, resolving the caller's
// session from the sid cookie via the registry.
type Guard struct {
	registry *services.SessionRegistry
}

func NewGuard(registry *services.SessionRegistry) *Guard {
	return &Guard{registry: registry}
}

func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return g.require(VariantAuthenticated, next)
}

func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return g.require(VariantAdmin, next)
}

func (g *Guard) RequireDoctor(next http.Handler) http.Handler {
	return g.require(VariantDoctor, next)
}

func (g *Guard) RequirePatient(next http.Handler) http.Handler {
	return g.require(VariantPatient, next)
}

func (g *Guard) require(variant Variant, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id domain.Identity
		decision := Decision{Kind: DecisionRedirect, Target: loginPath}

		cookie, err := r.Cookie(SessionCookieName)
		if err == nil && cookie.Value != "" {
			manager := g.registry.Get(cookie.Value).Session

			// Restoration is idempotent and bounded by the request
			// context; once it returns, the decision is final, so the
			// wait branch no longer needs the stored-credential probe.
			if err := manager.Restore(r.Context()); err != nil {
				log.Printf("guard: session restore: %v", err)
			}

			id, _ = manager.Identity()
			decision = Decide(manager.State(), id, false, variant)
		}

		metrics.GuardDecision(string(variant), decision.Kind.String())

		switch decision.Kind {
		case DecisionWait:
			w.Header().Set("Retry-After", "1")
			http.Error(w, "session restoring", http.StatusServiceUnavailable)

		case DecisionRedirect:
			// Never redirect a login page to itself.
			if strings.HasPrefix(r.URL.Path, loginPath) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			target := decision.Target
			if decision.Message != "" {
				target += "?message=" + url.QueryEscape(decision.Message)
			}
			http.Redirect(w, r, target, http.StatusSeeOther)

		case DecisionAllow:
			ctx := context.WithValue(r.Context(), IdentityKey, id)
			ctx = context.WithValue(ctx, UserIDKey, id.SubjectID)
			ctx = context.WithValue(ctx, RoleKey, string(id.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	})
}

func (k DecisionKind) String() string {
	switch k {
	case DecisionAllow:
		return "allow"
	case DecisionWait:
		return "wait"
	case DecisionRedirect:
		return "redirect"
	}
	return "unknown"
}

// SessionCookieName carries the gateway session id.
const SessionCookieName = "sid"
