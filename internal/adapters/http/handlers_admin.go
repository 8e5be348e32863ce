package web

import (
	"net/http"
	"time"

	auditStore "coachhub/internal/adapters/storage/audit"
	"coachhub/internal/application/listutil"
	"coachhub/internal/application/orchestrators"
	"coachhub/internal/application/projections"
	auditDomain "coachhub/internal/domain/audit"
)

// handleAdminListUsers handles GET /api/admin/users?role=&q=&page=.
func handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	q := r.URL.Query()
	page, err := projections.QueryListUsers(r.Context(), q.Get("role"), q.Get("q"), listutil.ParsePageParams(q), stores.Users)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type provisionUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	CityID   string `json:"city_id"`
}

// handleAdminProvisionUser handles POST /api/admin/users.
func handleAdminProvisionUser(w http.ResponseWriter, r *http.Request) {
	var req provisionUserRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := orchestrators.ExecuteProvisionUser(r.Context(), orchestrators.ProvisionUserInput{
		Actor:    actorFrom(r),
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		Phone:    req.Phone,
		CityID:   req.CityID,
	}, orchestrators.ProvisionUserDeps{
		Identity: app.Identity,
		ProvisionDeps: orchestrators.ProvisionDeps{
			Users:   stores.Users,
			Coaches: stores.Coaches,
			Outbox:  stores.Outbox,
		},
		Notifier: app.Notifier,
		Audit:    stores.Audit,
		Now:      now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user_id":              res.UserID,
		"verification_pending": res.VerificationPending,
	})
}

// handleAdminAudit handles GET /api/admin/audit with optional category,
// action, severity, actor_id, resource_id, from and to filters.
func handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	q := r.URL.Query()
	filter := auditStore.Filter{
		Category:   auditDomain.Category(q.Get("category")),
		Action:     auditDomain.Action(q.Get("action")),
		Severity:   auditDomain.Severity(q.Get("severity")),
		ActorID:    q.Get("actor_id"),
		ResourceID: q.Get("resource_id"),
		From:       q.Get("from"),
		To:         q.Get("to"),
	}
	page, err := projections.QueryListAudit(r.Context(), filter, listutil.ParsePageParams(q), stores.Audit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleAdminListOutbox handles GET /api/admin/outbox?status=&limit=.
func handleAdminListOutbox(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	q := r.URL.Query()
	entries, err := projections.QueryListOutbox(r.Context(), q.Get("status"), listutil.ParseInt(q, "limit"), stores.Outbox)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleAdminOutboxAction handles POST /api/admin/outbox/{id}/retry and
// POST /api/admin/outbox/{id}/abandon.
func handleAdminOutboxAction(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if app.Outbox == nil {
		http.Error(w, "outbox processor unavailable", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	id := r.PathValue("id")
	switch r.PathValue("action") {
	case "retry":
		entry, err := app.Outbox.ProcessSingle(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	case "abandon":
		if err := app.Outbox.AbandonEntry(ctx, id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}

// handleAdminPerf handles GET /api/admin/perf?minutes=&top=.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if perfCollector == nil {
		http.Error(w, "performance collection disabled", http.StatusServiceUnavailable)
		return
	}
	q := r.URL.Query()
	minutes := listutil.ParseInt(q, "minutes")
	if minutes <= 0 {
		minutes = 15
	}
	top := listutil.ParseInt(q, "top")
	if top <= 0 {
		top = 10
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(now().Add(-time.Duration(minutes)*time.Minute), top))
}
