//go:build !cli
// +build !cli

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"storefront.GO/api"
	_ "storefront.GO/api/cart"
	_ "storefront.GO/api/graphql"
	_ "storefront.GO/api/health"
	_ "storefront.GO/api/media"
	_ "storefront.GO/api/product"
	_ "storefront.GO/api/realtime"
	_ "storefront.GO/api/search"
	_ "storefront.GO/api/stock"
	"storefront.GO/config"
	"storefront.GO/core/app"
	"storefront.GO/core/auth"
	_ "storefront.GO/custom"
	_ "storefront.GO/html"
)

var bannerFonts = []string{"standard", "slant", "small", "big"}

func main() {
	config.LoadEnv()
	cfg := config.LoadAppConfig()
	log := config.NewLogger(os.Stderr)

	fig := figure.NewFigure(cfg.AppName, bannerFonts[rand.Intn(len(bannerFonts))], true)
	fig.Print()

	a, err := app.New(log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a.StartIndexing(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Response().Before(func() {
				c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
			})
			err := next(c)
			log.Debug("request served", "path", c.Path(), "duration_ms", time.Since(start).Milliseconds())
			return err
		}
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware())
	api.ApplyModules(apiGroup, a.Deps)
	api.ApplyRoutes(e, a.Deps)

	go func() {
		addr := ":" + cfg.Port
		log.Info(fmt.Sprintf("Server running on %s", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
