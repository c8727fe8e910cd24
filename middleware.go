package familykit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// RequestIDHeader is the header carrying the request correlation ID.
const RequestIDHeader = "X-Request-ID"

// Middleware provides HTTP middleware for permission checking.
type Middleware struct {
	guard        *Guard
	roles        RoleChecker
	getActor     func(*http.Request) (Actor, bool)
	errorHandler func(http.ResponseWriter, *http.Request, error)
	logger       zerolog.Logger
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := familykit.NewMiddleware(guard,
//	    familykit.WithActorExtractor(func(r *http.Request) (familykit.Actor, bool) {
//	        return actorFromToken(r)
//	    }),
//	)
func NewMiddleware(guard *Guard, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		guard:        guard,
		getActor:     defaultGetActor,
		errorHandler: defaultErrorHandler,
		logger:       zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithActorExtractor sets a custom function to extract the actor from a request.
func WithActorExtractor(fn func(*http.Request) (Actor, bool)) MiddlewareOption {
	return func(m *Middleware) {
		m.getActor = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

// WithMiddlewareLogger sets the logger used to report rejected requests.
func WithMiddlewareLogger(logger zerolog.Logger) MiddlewareOption {
	return func(m *Middleware) {
		m.logger = logger
	}
}

func defaultGetActor(r *http.Request) (Actor, bool) {
	return GetActor(r.Context())
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsUnauthenticated(err):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case IsForbidden(err):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case IsInvalidResource(err):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// ActorFromHeaders creates an actor extractor reading the user ID and role from
// request headers. It is intended for trusted deployments where an upstream
// gateway has already authenticated the caller.
func ActorFromHeaders(idHeader, roleHeader string) func(*http.Request) (Actor, bool) {
	return func(r *http.Request) (Actor, bool) {
		actor := Actor{
			ID:   r.Header.Get(idHeader),
			Role: Role(r.Header.Get(roleHeader)),
		}
		if actor.ID == "" || (actor.Role != RoleParent && actor.Role != RoleChild) {
			return Actor{}, false
		}
		return actor, true
	}
}

// ResourceExtractor extracts the target resource ID from an HTTP request.
type ResourceExtractor func(*http.Request) (string, error)

// ResourceFromParam creates a ResourceExtractor that reads the resource ID
// from a path parameter. Both net/http patterns and gorilla/mux routes work.
//
// Example:
//
//	// For route /tasks/{taskID}
//	mw.RequirePermission("task.update", familykit.ResourceFromParam("taskID"))
func ResourceFromParam(paramName string) ResourceExtractor {
	return func(r *http.Request) (string, error) {
		id := r.PathValue(paramName)
		if id == "" {
			id = mux.Vars(r)[paramName]
		}
		if id == "" {
			return "", NewError(ErrInvalidResource, "resource ID not found in path")
		}
		return id, nil
	}
}

// ResourceFromQuery creates a ResourceExtractor that reads the resource ID from
// a query parameter.
func ResourceFromQuery(queryParam string) ResourceExtractor {
	return func(r *http.Request) (string, error) {
		id := r.URL.Query().Get(queryParam)
		if id == "" {
			return "", NewError(ErrInvalidResource, "resource ID not found in query")
		}
		return id, nil
	}
}

// ResourceFromHeader creates a ResourceExtractor that reads the resource ID
// from a header.
func ResourceFromHeader(headerName string) ResourceExtractor {
	return func(r *http.Request) (string, error) {
		id := r.Header.Get(headerName)
		if id == "" {
			return "", NewError(ErrInvalidResource, "resource ID not found in header")
		}
		return id, nil
	}
}

// NoResource is a ResourceExtractor for collection routes (create, list).
// Ownership checks are skipped for them.
func NoResource(*http.Request) (string, error) {
	return "", nil
}

// RequirePermission creates middleware that requires a dotted permission such
// as "work.update". It panics if the permission is malformed.
//
// Example:
//
//	router.Handle("/works/{workID}",
//	    mw.RequirePermission("work.delete", familykit.ResourceFromParam("workID"))(deleteWork))
func (m *Middleware) RequirePermission(permission string, extractor ResourceExtractor) func(http.Handler) http.Handler {
	resourceType, op := MustParsePermission(permission)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor, ok := m.getActor(r)
			if !ok {
				m.reject(w, r, ErrUnauthenticated)
				return
			}

			resourceID, err := extractor(r)
			if err != nil {
				m.reject(w, r, err)
				return
			}

			v := m.guard.Checker().CheckPermission(ctx, actor.Context(resourceType, op, resourceID))
			if !v.Success {
				m.reject(w, r, VerdictError(v).
					WithResource(resourceType, resourceID).
					WithOperation(op).
					WithUser(actor.ID))
				return
			}

			ctx = WithActor(ctx, actor)
			ctx = WithVerdict(ctx, v)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAnyRole creates middleware that requires the actor to hold one of roles.
//
// Example:
//
//	router.Handle("/payments", mw.RequireAnyRole(familykit.RoleParent)(listPayments))
func (m *Middleware) RequireAnyRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := m.getActor(r)
			if !ok {
				m.reject(w, r, ErrUnauthenticated)
				return
			}

			v := m.roles.HasAnyRole(actor.Role, roles)
			if !v.Success {
				m.reject(w, r, VerdictError(v).WithUser(actor.ID))
				return
			}

			ctx := WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOwnership creates middleware that only checks that the actor owns the
// resource, without consulting the policy table.
func (m *Middleware) RequireOwnership(resourceType ResourceType, extractor ResourceExtractor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor, ok := m.getActor(r)
			if !ok {
				m.reject(w, r, ErrUnauthenticated)
				return
			}

			resourceID, err := extractor(r)
			if err != nil {
				m.reject(w, r, err)
				return
			}
			if resourceID == "" {
				m.reject(w, r, NewError(ErrInvalidResource, "resource ID required for ownership check"))
				return
			}

			if err := m.guard.RequireResourceOwnership(ctx, actor.ID, resourceID, resourceType); err != nil {
				m.reject(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(ctx, actor)))
		})
	}
}

// InjectRequestContext creates middleware that adds the request ID and, when
// one can be extracted, the actor to the request context. A request ID is
// generated when the client did not send one.
//
// Example:
//
//	router.Use(mw.InjectRequestContext())
func (m *Middleware) InjectRequestContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			ctx = WithRequestID(ctx, requestID)
			w.Header().Set(RequestIDHeader, requestID)

			if actor, ok := m.getActor(r); ok {
				ctx = WithActor(ctx, actor)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	m.logger.Info().
		Err(err).
		Str("request_id", GetRequestID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request rejected")

	m.errorHandler(w, r, err)
}
