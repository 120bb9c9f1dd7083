package router

import (
	app "github.com/taranco/contact-directory-api/internal/application"
	"github.com/taranco/contact-directory-api/internal/container"
	"github.com/taranco/contact-directory-api/internal/infrastructure/essearch"
	pginfra "github.com/taranco/contact-directory-api/internal/infrastructure/postgres"
	"github.com/taranco/contact-directory-api/internal/infrastructure/redisstore"
	handlers "github.com/taranco/contact-directory-api/internal/interface/http"
	"github.com/taranco/contact-directory-api/internal/router/modules"
	"github.com/taranco/contact-directory-api/pkg/helpers"
)

type Deps struct {
	Auth      *handlers.AuthHandler
	User      *handlers.UserHandler
	Member    *handlers.MemberHandler
	Admin     *handlers.AdminHandler
	Directory *app.DirectoryService
}

func buildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()
	tokens := container.GetTokens()
	mail := container.GetMail()

	users := pginfra.NewUserRepository(pool)
	members := pginfra.NewMemberRepository(pool)
	admins := pginfra.NewAdminRepository(pool)

	// ES is optional: a nil index leaves SQL search authoritative.
	var search app.MemberSearchIndex
	if es := container.GetES(); es != nil {
		search = essearch.NewMemberIndex(es, cfg.ESMembersIndex)
	}

	var images app.ImageStore
	if gcs := container.GetGCS(); gcs != nil {
		images = helpers.NewGCSImageStore(gcs, cfg.GCSBucket)
	}

	resetTokens := redisstore.NewResetTokenStore(container.GetRedis())

	authSvc := app.NewAuthService(users, tokens, mail, logger)
	recoverySvc := app.NewRecoveryService(users, resetTokens, mail, logger, cfg.OTPTTL, cfg.ResetLinkTTL, cfg.ResetPasswordURL)
	directorySvc := app.NewDirectoryService(members, users, images, search, logger)
	userSvc := app.NewUserService(users, members, images, logger)
	adminSvc := app.NewAdminService(admins, users, members, tokens, search, logger)

	return Deps{
		Auth:      handlers.NewAuthHandler(authSvc, recoverySvc, logger),
		User:      handlers.NewUserHandler(userSvc, logger),
		Member:    handlers.NewMemberHandler(directorySvc, userSvc, logger),
		Admin:     handlers.NewAdminHandler(adminSvc, logger),
		Directory: directorySvc,
	}
}

// InitModules wires repositories, services and handlers from the container
// singletons and registers every feature module on the registry. Called once
// during startup.
func InitModules(r *Registry) {
	deps := buildDeps()
	tokens := container.GetTokens()

	r.Add(modules.NewAuthModule(deps.Auth))
	r.Add(modules.NewUserModule(deps.User, tokens))
	r.Add(modules.NewMemberModule(deps.Member, tokens))
	r.Add(modules.NewAdminModule(deps.Admin, tokens))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
