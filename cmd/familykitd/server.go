package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fernandezvara/dbkit"
	"github.com/fernandezvara/familykit"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
)

// resourcePaths maps each built-in resource type to its collection path.
var resourcePaths = map[familykit.ResourceType]string{
	familykit.ResourceFamily:     "/families",
	familykit.ResourceTask:       "/tasks",
	familykit.ResourceTaskDetail: "/task-details",
	familykit.ResourceWork:       "/works",
	familykit.ResourcePayment:    "/payments",
	familykit.ResourceProfile:    "/profiles",
}

type healthChecker interface {
	Health(ctx context.Context) dbkit.HealthStatus
}

type server struct {
	guard    *familykit.Guard
	db       bun.IDB
	repos    map[familykit.ResourceType]*familykit.TableRepository
	health   healthChecker
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
	cfg      HTTPConfig
	metrics  MetricsConfig
}

func (s *server) routes() *mux.Router {
	mw := familykit.NewMiddleware(s.guard,
		familykit.WithActorExtractor(familykit.ActorFromHeaders(s.cfg.UserIDHeader, s.cfg.UserRoleHeader)),
		familykit.WithMiddlewareLogger(s.logger),
	)
	member := mw.RequireAnyRole(familykit.RoleParent, familykit.RoleChild)

	r := mux.NewRouter()
	r.Use(mw.InjectRequestContext())
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics.Enabled {
		r.Handle(s.metrics.Path, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/v1").Subrouter()
	for rt, path := range resourcePaths {
		read := mw.RequirePermission(familykit.Permission(rt, familykit.OperationRead), familykit.ResourceFromParam("id"))
		api.Handle(path+"/{id}", read(s.handleRead(rt))).Methods(http.MethodGet)
	}
	api.Handle("/works/{id}", member(http.HandlerFunc(s.handleUpdateWork))).Methods(http.MethodPatch)
	api.Handle("/permissions/check", member(http.HandlerFunc(s.handleCheck))).Methods(http.MethodPost)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.health.Health(r.Context())
	checker := s.guard.Checker()

	code := http.StatusOK
	if !status.Healthy || !checker.IsHealthy() {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"database": status,
		"checker": map[string]any{
			"healthy":   checker.IsHealthy(),
			"decisions": checker.DecisionMetrics(),
		},
	})
}

func (s *server) handleRead(rt familykit.ResourceType) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record, err := s.repos[rt].FindByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if record == nil {
			writeError(w, http.StatusNotFound, "resource not found")
			return
		}
		writeJSON(w, http.StatusOK, record)
	})
}

type updateWorkRequest struct {
	Notes string `json:"notes"`
}

// handleUpdateWork lets the child who submitted a work edit its notes until a
// parent approves it.
func (s *server) handleUpdateWork(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := familykit.MustGetActor(ctx)
	id := mux.Vars(r)["id"]

	var req updateWorkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	work := new(familykit.Work)
	err := dbkit.WithErr1(s.db.NewSelect().Model(work).Where("?TableAlias.id = ?", id).Limit(1).Scan(ctx), "FindWork").Err()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbkit.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "resource not found")
			return
		}
		s.serverError(w, r, err)
		return
	}

	pctx := actor.Context(familykit.ResourceWork, familykit.OperationUpdate, id)
	pctx.ResourceOwnerID = work.ChildID
	pctx.AdditionalData = map[string]any{familykit.WorkApprovedKey: work.IsApproved}

	if v := s.guard.Checker().CheckPermission(ctx, pctx); !v.Success {
		writeJSON(w, v.StatusCode, v)
		return
	}

	// Approval may land between the check and the write.
	work.Notes = req.Notes
	res, err := s.db.NewUpdate().Model(work).Column("notes").WherePK().Where("is_approved = false").Exec(ctx)
	if err != nil {
		s.serverError(w, r, dbkit.WithErr1(err, "UpdateWork").Err())
		return
	}
	if n, err := res.RowsAffected(); err != nil {
		s.serverError(w, r, err)
		return
	} else if n == 0 {
		writeJSON(w, http.StatusForbidden, familykit.Deny(familykit.CodeCustomCheckFailed,
			"custom permission check failed: update on work", http.StatusForbidden))
		return
	}
	writeJSON(w, http.StatusOK, work.Record())
}

type checkRequest struct {
	ResourceType   familykit.ResourceType `json:"resourceType"`
	Operation      familykit.Operation    `json:"operation"`
	ResourceID     string                 `json:"resourceId"`
	AdditionalData map[string]any         `json:"additionalData"`
}

// handleCheck evaluates an arbitrary check for the calling actor. Denials are
// reported with the verdict status code.
func (s *server) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := familykit.MustGetActor(ctx)

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !familykit.ValidResourceType(req.ResourceType) || !familykit.ValidOperation(req.Operation) {
		writeError(w, http.StatusBadRequest, "a valid resourceType and operation are required")
		return
	}

	pctx := actor.Context(req.ResourceType, req.Operation, req.ResourceID)
	pctx.AdditionalData = req.AdditionalData

	v := s.guard.Checker().CheckPermission(ctx, pctx)
	code := http.StatusOK
	if !v.Success {
		code = v.StatusCode
	}
	writeJSON(w, code, v)
}

func (s *server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().
		Err(err).
		Str("request_id", familykit.GetRequestID(r.Context())).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
