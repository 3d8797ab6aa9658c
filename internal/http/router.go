package http

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/vitacasa-care/community-service/internal/agenda"
	"github.com/vitacasa-care/community-service/internal/auth"
	"github.com/vitacasa-care/community-service/internal/clinic"
	"github.com/vitacasa-care/community-service/internal/clinicalnote"
	"github.com/vitacasa-care/community-service/internal/collection"
	"github.com/vitacasa-care/community-service/internal/document"
	"github.com/vitacasa-care/community-service/internal/finance"
	"github.com/vitacasa-care/community-service/internal/healthrecord"
	"github.com/vitacasa-care/community-service/internal/httpx"
	"github.com/vitacasa-care/community-service/internal/inventory"
	"github.com/vitacasa-care/community-service/internal/medication"
	"github.com/vitacasa-care/community-service/internal/notify"
	"github.com/vitacasa-care/community-service/internal/occurrence"
	"github.com/vitacasa-care/community-service/internal/patient"
	"github.com/vitacasa-care/community-service/internal/ptigoal"
	"github.com/vitacasa-care/community-service/internal/store"
	"github.com/vitacasa-care/community-service/internal/telemetry"
	"github.com/vitacasa-care/community-service/internal/users"
)

// Deps carries everything the router wires together.
type Deps struct {
	DB          *sql.DB
	Verifier    *auth.Verifier
	AuthService *auth.Service
	Store       *store.Store
	Notify      *notify.Center
	Metrics     *telemetry.Metrics
}

// SetupRouter initializes all routes for the application
func SetupRouter(deps Deps) *mux.Router {
	clinicRepo := clinic.NewRepository(deps.DB)
	clinicService := clinic.NewService(clinicRepo)
	clinicHandler := clinic.NewHandler(clinicService, deps.Store)

	patientHandler := patient.NewHandler(patient.NewService(deps.Store, clinicService))
	noteHandler := clinicalnote.NewHandler(clinicalnote.NewService(deps.Store))
	occurrenceHandler := occurrence.NewHandler(occurrence.NewService(deps.Store))
	agendaHandler := agenda.NewHandler(agenda.NewService(deps.Store))
	medicationHandler := medication.NewHandler(medication.NewService(deps.Store))
	financeHandler := finance.NewHandler(finance.NewService(deps.Store))
	documentHandler := document.NewHandler(document.NewService(deps.Store))
	inventoryHandler := inventory.NewHandler(inventory.NewService(deps.Store))
	goalHandler := ptigoal.NewHandler(ptigoal.NewService(deps.Store))
	healthHandler := healthrecord.NewHandler(healthrecord.NewService(deps.Store))
	userHandler := users.NewHandler(users.NewService(deps.Store, clinicService))
	authHandler := auth.NewHandler(deps.AuthService)
	notifyHandler := notify.NewHandler(deps.Notify)

	authn := auth.Middleware(deps.Verifier)
	gate := auth.RequireModule
	if deps.Metrics != nil {
		authn = auth.MiddlewareWithMetrics(deps.Verifier, deps.Metrics)
		gate = func(module string) func(http.Handler) http.Handler {
			return auth.RequireModuleWithMetrics(module, deps.Metrics)
		}
	}
	admin := requireAdmin

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("community-service"))

	// Public endpoints
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"community-service"}`))
	}).Methods("GET")

	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Session and feed
	r.Handle("/auth/me", authn(http.HandlerFunc(authHandler.Me))).Methods("GET")
	r.Handle("/notifications", authn(http.HandlerFunc(notifyHandler.Recent))).Methods("GET")
	r.Handle("/status", authn(http.HandlerFunc(statusHandler(deps.Store)))).Methods("GET")

	// Clinic registry (ADMIN only)
	r.Handle("/clinics", authn(admin(http.HandlerFunc(clinicHandler.CreateClinic)))).Methods("POST")
	r.Handle("/clinics", authn(admin(http.HandlerFunc(clinicHandler.ListClinics)))).Methods("GET")
	r.Handle("/clinics/{id}", authn(admin(http.HandlerFunc(clinicHandler.GetClinic)))).Methods("GET")
	r.Handle("/clinics/{id}", authn(admin(http.HandlerFunc(clinicHandler.UpdateClinic)))).Methods("PUT")
	r.Handle("/clinics/{id}", authn(admin(http.HandlerFunc(clinicHandler.DeleteClinic)))).Methods("DELETE")

	// Clinic settings
	r.Handle("/settings", authn(gate(auth.ModuleSettings)(http.HandlerFunc(clinicHandler.GetSettings)))).Methods("GET")
	r.Handle("/settings", authn(gate(auth.ModuleSettings)(http.HandlerFunc(clinicHandler.UpdateSettings)))).Methods("PUT")

	// Patients
	r.Handle("/patients", authn(gate(auth.ModulePatients)(http.HandlerFunc(patientHandler.CreatePatient)))).Methods("POST")
	r.Handle("/patients", authn(gate(auth.ModulePatients)(http.HandlerFunc(patientHandler.ListPatients)))).Methods("GET")
	r.Handle("/patients/{id}", authn(gate(auth.ModulePatients)(http.HandlerFunc(patientHandler.GetPatient)))).Methods("GET")
	r.Handle("/patients/{id}", authn(gate(auth.ModulePatients)(http.HandlerFunc(patientHandler.UpdatePatient)))).Methods("PUT")
	r.Handle("/patients/{id}/status", authn(gate(auth.ModulePatients)(http.HandlerFunc(patientHandler.ChangeStatus)))).Methods("PATCH")
	r.Handle("/patients/{id}", authn(gate(auth.ModulePatients)(http.HandlerFunc(patientHandler.DeletePatient)))).Methods("DELETE")

	// Clinical notes
	r.Handle("/records", authn(gate(auth.ModuleRecords)(http.HandlerFunc(noteHandler.CreateNote)))).Methods("POST")
	r.Handle("/patients/{patientId}/records", authn(gate(auth.ModuleRecords)(http.HandlerFunc(noteHandler.ListByPatient)))).Methods("GET")
	r.Handle("/records/{id}", authn(gate(auth.ModuleRecords)(http.HandlerFunc(noteHandler.DeleteNote)))).Methods("DELETE")

	// Occurrences
	r.Handle("/occurrences", authn(gate(auth.ModuleOccurrences)(http.HandlerFunc(occurrenceHandler.CreateOccurrence)))).Methods("POST")
	r.Handle("/occurrences", authn(gate(auth.ModuleOccurrences)(http.HandlerFunc(occurrenceHandler.ListOccurrences)))).Methods("GET")
	r.Handle("/occurrences/{id}/status", authn(gate(auth.ModuleOccurrences)(http.HandlerFunc(occurrenceHandler.Transition)))).Methods("PATCH")
	r.Handle("/occurrences/{id}", authn(gate(auth.ModuleOccurrences)(http.HandlerFunc(occurrenceHandler.DeleteOccurrence)))).Methods("DELETE")

	// Agenda
	r.Handle("/agenda", authn(gate(auth.ModuleAgenda)(http.HandlerFunc(agendaHandler.CreateEvent)))).Methods("POST")
	r.Handle("/agenda", authn(gate(auth.ModuleAgenda)(http.HandlerFunc(agendaHandler.ListEvents)))).Methods("GET")
	r.Handle("/agenda/{id}", authn(gate(auth.ModuleAgenda)(http.HandlerFunc(agendaHandler.DeleteEvent)))).Methods("DELETE")

	// Medications
	r.Handle("/medications", authn(gate(auth.ModuleMedications)(http.HandlerFunc(medicationHandler.CreateBatch)))).Methods("POST")
	r.Handle("/medications", authn(gate(auth.ModuleMedications)(http.HandlerFunc(medicationHandler.ListMedications)))).Methods("GET")
	r.Handle("/medications/{id}/administer", authn(gate(auth.ModuleMedications)(http.HandlerFunc(medicationHandler.Administer)))).Methods("POST")
	r.Handle("/medications/{id}", authn(gate(auth.ModuleMedications)(http.HandlerFunc(medicationHandler.DeleteMedication)))).Methods("DELETE")

	// Finance
	r.Handle("/transactions", authn(gate(auth.ModuleFinance)(http.HandlerFunc(financeHandler.CreateTransaction)))).Methods("POST")
	r.Handle("/transactions", authn(gate(auth.ModuleFinance)(http.HandlerFunc(financeHandler.ListTransactions)))).Methods("GET")
	r.Handle("/transactions/summary", authn(gate(auth.ModuleFinance)(http.HandlerFunc(financeHandler.GetSummary)))).Methods("GET")
	r.Handle("/transactions/refresh", authn(gate(auth.ModuleFinance)(http.HandlerFunc(financeHandler.Refresh)))).Methods("POST")
	r.Handle("/transactions/{id}", authn(gate(auth.ModuleFinance)(http.HandlerFunc(financeHandler.UpdateTransaction)))).Methods("PUT")
	r.Handle("/transactions/{id}", authn(gate(auth.ModuleFinance)(http.HandlerFunc(financeHandler.DeleteTransaction)))).Methods("DELETE")

	// Documents
	r.Handle("/documents", authn(gate(auth.ModuleDocuments)(http.HandlerFunc(documentHandler.CreateDocument)))).Methods("POST")
	r.Handle("/documents", authn(gate(auth.ModuleDocuments)(http.HandlerFunc(documentHandler.ListDocuments)))).Methods("GET")
	r.Handle("/documents/{id}", authn(gate(auth.ModuleDocuments)(http.HandlerFunc(documentHandler.GetDocument)))).Methods("GET")
	r.Handle("/documents/{id}", authn(gate(auth.ModuleDocuments)(http.HandlerFunc(documentHandler.DeleteDocument)))).Methods("DELETE")

	// Inventory
	r.Handle("/inventory", authn(gate(auth.ModuleInventory)(http.HandlerFunc(inventoryHandler.CreateItem)))).Methods("POST")
	r.Handle("/inventory", authn(gate(auth.ModuleInventory)(http.HandlerFunc(inventoryHandler.ListItems)))).Methods("GET")
	r.Handle("/inventory/{id}", authn(gate(auth.ModuleInventory)(http.HandlerFunc(inventoryHandler.UpdateItem)))).Methods("PUT")
	r.Handle("/inventory/{id}", authn(gate(auth.ModuleInventory)(http.HandlerFunc(inventoryHandler.DeleteItem)))).Methods("DELETE")

	// PTI goals
	r.Handle("/pti-goals", authn(gate(auth.ModulePTI)(http.HandlerFunc(goalHandler.AppendGoal)))).Methods("POST")
	r.Handle("/patients/{patientId}/pti-goals", authn(gate(auth.ModulePTI)(http.HandlerFunc(goalHandler.ListByPatient)))).Methods("GET")

	// Health records
	r.Handle("/health-records", authn(gate(auth.ModuleHealthRecords)(http.HandlerFunc(healthHandler.AppendEntry)))).Methods("POST")
	r.Handle("/patients/{patientId}/health-records", authn(gate(auth.ModuleHealthRecords)(http.HandlerFunc(healthHandler.ListByPatient)))).Methods("GET")

	// Staff accounts
	r.Handle("/users", authn(gate(auth.ModuleUsers)(http.HandlerFunc(userHandler.CreateUser)))).Methods("POST")
	r.Handle("/users", authn(gate(auth.ModuleUsers)(http.HandlerFunc(userHandler.ListUsers)))).Methods("GET")
	r.Handle("/users/{id}", authn(gate(auth.ModuleUsers)(http.HandlerFunc(userHandler.GetUser)))).Methods("GET")
	r.Handle("/users/{id}", authn(gate(auth.ModuleUsers)(http.HandlerFunc(userHandler.UpdateUser)))).Methods("PATCH")
	r.Handle("/users/{id}/reset-password", authn(gate(auth.ModuleUsers)(http.HandlerFunc(userHandler.ResetPassword)))).Methods("POST")
	r.Handle("/users/{id}/permissions", authn(gate(auth.ModuleUsers)(http.HandlerFunc(userHandler.GrantPermissions)))).Methods("PUT")
	r.Handle("/users/{id}", authn(gate(auth.ModuleUsers)(http.HandlerFunc(userHandler.DeleteUser)))).Methods("DELETE")

	return r
}

// requireAdmin gates the clinic registry: no module covers it, only the role.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pr, ok := auth.FromContext(r.Context())
		if !ok {
			httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
			return
		}
		if pr.Role != auth.RoleAdmin {
			httpx.RespondError(w, http.StatusForbidden, "forbidden", "Admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type collectionStatus struct {
	Collection string `json:"collection"`
	State      string `json:"state"`
}

// statusHandler reports the breaker state of every collection for the
// caller's clinic.
func statusHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pr, ok := auth.FromContext(r.Context())
		if !ok {
			httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
			return
		}

		statuses := make([]collectionStatus, 0, len(collection.All()))
		degraded := false
		for _, table := range collection.All() {
			state := st.BreakerState(pr.ClinicID, table)
			if state != store.StateClosed {
				degraded = true
			}
			statuses = append(statuses, collectionStatus{
				Collection: string(table),
				State:      state.String(),
			})
		}

		httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"degraded":    degraded,
			"collections": statuses,
		})
	}
}
