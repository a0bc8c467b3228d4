package tag

import (
	"time"

	"livestream-api/core/cache"
	"livestream-api/core/database"
	"livestream-api/modules/tag/controller"
	"livestream-api/modules/tag/repository"
	"livestream-api/modules/tag/router"
	"livestream-api/modules/tag/service"

	"github.com/labstack/echo/v4"
)

func Init(api *echo.Group, db *database.Database, c cache.Cache, ttl time.Duration) *service.TagService {
	repo := repository.NewTagRepository(db.SQLx())
	svc := service.NewTagService(repo, c, ttl)
	ctrl := controller.NewTagController(svc)

	router.NewTagRouter(ctrl).Register(api)

	return svc
}
