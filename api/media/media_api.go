package media

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	mediaService "storefront.GO/service/media"
)

// FormField is the multipart field carrying the image.
const FormField = "my_file"

func init() {
	api.RegisterModule(RegisterMediaRoutes)
}

func RegisterMediaRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/admin/products")

	// POST /api/admin/products/upload-image (multipart my_file)
	g.POST("/upload-image", func(c echo.Context) error {
		if deps == nil || deps.Media == nil {
			return api.Fail(c, http.StatusServiceUnavailable, "Image upload is not configured")
		}
		fh, err := c.FormFile(FormField)
		if err != nil {
			return api.Fail(c, http.StatusBadRequest, "Image file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return api.Fail(c, http.StatusBadRequest, "Image file is unreadable")
		}
		defer f.Close()

		result, err := deps.Media.Upload(c.Request().Context(), f, fh.Filename)
		if errors.Is(err, mediaService.ErrNotConfigured) {
			return api.Fail(c, http.StatusServiceUnavailable, "Image upload is not configured")
		}
		if err != nil {
			deps.Logger().Error("image upload failed", "filename", fh.Filename, "error", err)
			return api.Fail(c, http.StatusBadGateway, "Error occured")
		}
		return api.OK(c, result)
	})
}
