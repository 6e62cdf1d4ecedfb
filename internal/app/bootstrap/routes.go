// internal/app/bootstrap/routes.go
package bootstrap

import (
	"encoding/hex"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	authnfeature "github.com/taskhub/taskhub/internal/app/features/authn"
	departmentsfeature "github.com/taskhub/taskhub/internal/app/features/departments"
	featuresfeature "github.com/taskhub/taskhub/internal/app/features/features"
	healthfeature "github.com/taskhub/taskhub/internal/app/features/health"
	mediafeature "github.com/taskhub/taskhub/internal/app/features/media"
	permissionsfeature "github.com/taskhub/taskhub/internal/app/features/permissions"
	projectsfeature "github.com/taskhub/taskhub/internal/app/features/projects"
	rolesfeature "github.com/taskhub/taskhub/internal/app/features/roles"
	tasksfeature "github.com/taskhub/taskhub/internal/app/features/tasks"
	teamsfeature "github.com/taskhub/taskhub/internal/app/features/teams"
	usersfeature "github.com/taskhub/taskhub/internal/app/features/users"
	usertagsfeature "github.com/taskhub/taskhub/internal/app/features/usertags"
	"github.com/taskhub/taskhub/internal/app/system/auth"
	"github.com/taskhub/taskhub/internal/app/system/credentials"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. TaskHub applies the session middleware
// globally and mounts one feature router per resource collection. Projects
// and their embedded task records share a single "/projects" subtree so the
// nested routes nest under the same project id parameter.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Invite codes are sealed with a config-supplied key. Without one we
	// fall back to a per-process random key, so invites only stay valid
	// until the next restart.
	boxKey := appCfg.SecretBoxKey
	if boxKey == "" {
		boxKey = hex.EncodeToString(securecookie.GenerateRandomKey(32))
		logger.Warn("secret_box_key not set; invite codes will not survive restarts")
	}
	inviteBox, err := credentials.NewBox(boxKey)
	if err != nil {
		logger.Error("invite box init failed", zap.Error(err))
		return nil, err
	}

	db := deps.TaskHubMongoDatabase

	r := chi.NewRouter()

	// Global auth middleware: loads the signed-in actor into context so
	// handlers can attribute writes via auth.CurrentActor(r).
	r.Use(sessionMgr.LoadSessionActor)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.TaskHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication: login, logout, invites, registration
	authnHandler := authnfeature.NewHandler(db, logger, sessionMgr, inviteBox)
	r.Mount("/auth", authnfeature.Routes(authnHandler))

	// Reference collections
	permissionsHandler := permissionsfeature.NewHandler(db, logger)
	r.Mount("/permissions", permissionsfeature.Routes(permissionsHandler, sessionMgr))

	featuresHandler := featuresfeature.NewHandler(db, logger)
	r.Mount("/features", featuresfeature.Routes(featuresHandler, sessionMgr))

	rolesHandler := rolesfeature.NewHandler(db, logger)
	r.Mount("/roles", rolesfeature.Routes(rolesHandler, sessionMgr))

	departmentsHandler := departmentsfeature.NewHandler(db, logger)
	r.Mount("/departments", departmentsfeature.Routes(departmentsHandler, sessionMgr))

	userTagsHandler := usertagsfeature.NewHandler(db, logger)
	r.Mount("/user-tags", usertagsfeature.Routes(userTagsHandler, sessionMgr))

	// People and teams
	usersHandler := usersfeature.NewHandler(db, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	teamsHandler := teamsfeature.NewHandler(db, logger)
	r.Mount("/teams", teamsfeature.Routes(teamsHandler, sessionMgr))

	// Projects and their embedded task records share one subtree.
	projectsHandler := projectsfeature.NewHandler(db, logger)
	tasksHandler := tasksfeature.NewHandler(db, logger)
	r.Route("/projects", func(pr chi.Router) {
		projectsfeature.Register(pr, projectsHandler, sessionMgr)
		tasksfeature.Register(pr, tasksHandler, sessionMgr)
	})

	// Media uploads
	mediaHandler := mediafeature.NewHandler(db, logger, appCfg.MediaDir)
	r.Mount("/media", mediafeature.Routes(mediaHandler, sessionMgr))

	return r, nil
}
