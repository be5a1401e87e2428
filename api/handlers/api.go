package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lawchain/lawchain-api/api"
	"github.com/lawchain/lawchain-api/api/scheduler"
	"github.com/lawchain/lawchain-api/chain"
	"github.com/lawchain/lawchain-api/config"
	"github.com/lawchain/lawchain-api/databases"
	"github.com/lawchain/lawchain-api/logging"
	"github.com/lawchain/lawchain-api/models"
	"github.com/lawchain/lawchain-api/seed"
	"github.com/lawchain/lawchain-api/session"
	"github.com/lawchain/lawchain-api/storage"
)

// requestTimeout bounds every REST request. The websocket route is exempt.
const requestTimeout = 30 * time.Second

// App stores the router and service wiring, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	dbHelper databases.DatabaseHelper

	Bridge   *chain.Bridge
	Sessions *session.Manager
	Seeds    *seed.Store
	Uploads  *storage.Uploader
	Hub      *Hub
	Janitor  *scheduler.Janitor
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	api.SetupGoGuardian()

	r := mux.NewRouter()
	r.Use(logging.Middleware)

	auth := Auth{Sessions: a.Sessions}
	identity := Identity{Bridge: a.Bridge}
	c := Case{Bridge: a.Bridge, Sessions: a.Sessions, Hub: a.Hub}
	mock := MockData{Store: a.Seeds}
	up := Upload{Uploads: a.Uploads, Bridge: a.Bridge, Hub: a.Hub}
	admin := Admin{Bridge: a.Bridge, Hub: a.Hub, Config: a.Config}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// websocket route sits on the root router so the request timeout
	// middleware never cuts a long-lived connection
	r.Handle("/api/v1/case-events", http.HandlerFunc(a.Hub.ServeCaseEvents)).Methods("GET")

	r.Handle("/api/users", http.HandlerFunc(mock.UsersHandler)).Methods("GET")
	r.Handle("/api/cases", http.HandlerFunc(mock.CasesHandler)).Methods("GET")
	r.Handle("/api/upload", http.HandlerFunc(up.UploadHandler)).Methods("POST")
	r.Handle("/api/file/{cid}", http.HandlerFunc(up.FileRedirectHandler)).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(requestTimeout))

	apiCreate.Handle("/auth/login", http.HandlerFunc(auth.LoginHandler)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(auth.LogoutHandler))).Methods("POST")
	apiCreate.Handle("/auth/authorize", api.Middleware(http.HandlerFunc(auth.AuthorizeHandler))).Methods("POST")

	apiCreate.Handle("/identity/register", http.HandlerFunc(identity.RegisterHandler)).Methods("POST")
	apiCreate.Handle("/identity/{address}", http.HandlerFunc(identity.IdentityHandler)).Methods("GET")

	apiCreate.Handle("/case", api.Middleware(http.HandlerFunc(c.CreateCaseHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(c.CaseByIDHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}/status", api.Middleware(http.HandlerFunc(c.UpdateCaseStatusHandler))).Methods("PUT")
	apiCreate.Handle("/cases/party/{address}", api.Middleware(http.HandlerFunc(c.CasesByPartyHandler))).Methods("GET")

	apiCreate.Handle("/admin/login", http.HandlerFunc(admin.AdminLoginHandler)).Methods("POST")
	apiCreate.Handle("/admin/approve/{address}", http.HandlerFunc(admin.ApproveHandler)).Methods("POST")

	// frontend assets hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir(a.Config.FrontendDir))))
	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("lawchain-api has connected to the database")

	reg := chain.NewRegistry(
		databases.NewUserDatabase(a.dbHelper),
		databases.NewCaseDatabase(a.dbHelper),
	)
	a.Bridge = chain.NewBridge(reg)
	a.Sessions = session.NewManager(reg)
	a.Hub = NewHub()

	a.Seeds = seed.NewStore(a.Config.FrontendDir)
	if err := a.Seeds.EnsureSeeded(); err != nil {
		zap.S().With(err).Error("failed to seed demo snapshots")
		return err
	}

	s3Client, err := storage.NewClient(context.Background(), &a.Config)
	if err != nil {
		zap.S().With(err).Error("failed to create object store client")
		return err
	}
	a.Uploads = storage.NewUploader(s3Client, &a.Config)

	a.Janitor = scheduler.NewJanitor(a.Uploads, reg)
	a.Janitor.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
