package livecomment

import (
	"livestream-api/core/database"
	"livestream-api/core/middleware"
	"livestream-api/modules/livecomment/controller"
	"livestream-api/modules/livecomment/repository"
	"livestream-api/modules/livecomment/router"
	"livestream-api/modules/livecomment/service"
	userrepo "livestream-api/modules/user/repository"
	userservice "livestream-api/modules/user/service"

	"github.com/labstack/echo/v4"
)

func Init(api *echo.Group, db *database.Database, mw *middleware.Middleware, profiles *userservice.ProfileFiller, livestreams service.LivestreamReader) *service.LivecommentService {
	repo := repository.NewLivecommentRepository(db.SQLx())
	svc := service.NewLivecommentService(repo, userrepo.NewUserRepository(db.SQLx()), profiles, livestreams)
	ctrl := controller.NewLivecommentController(svc)

	router.NewLivecommentRouter(ctrl).Register(api, mw)

	return svc
}
