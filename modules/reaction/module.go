package reaction

import (
	"livestream-api/core/database"
	"livestream-api/core/middleware"
	"livestream-api/modules/reaction/controller"
	"livestream-api/modules/reaction/repository"
	"livestream-api/modules/reaction/router"
	"livestream-api/modules/reaction/service"
	userrepo "livestream-api/modules/user/repository"
	userservice "livestream-api/modules/user/service"

	"github.com/labstack/echo/v4"
)

func Init(api *echo.Group, db *database.Database, mw *middleware.Middleware, profiles *userservice.ProfileFiller, livestreams service.LivestreamReader) *service.ReactionService {
	repo := repository.NewReactionRepository(db.SQLx())
	svc := service.NewReactionService(repo, userrepo.NewUserRepository(db.SQLx()), profiles, livestreams)
	ctrl := controller.NewReactionController(svc)

	router.NewReactionRouter(ctrl).Register(api, mw)

	return svc
}
