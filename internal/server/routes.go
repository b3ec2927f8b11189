// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"codeberg.org/oliverandrich/website/internal/handlers"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
)

func setupRoutes(e *echo.Echo, d *deps, staticDir string) {
	h := handlers.New(d.repo)
	authH := handlers.NewAuth(d.auth, d.sessions)
	commentH := handlers.NewComment(d.comments)

	e.GET("/health", h.Health)
	e.GET("/metrics", echoprometheus.NewHandler())

	api := e.Group("/api")
	api.POST("/register", authH.Register)
	api.GET("/activate-account", authH.Activate)
	api.POST("/activate-account", authH.Activate)
	api.POST("/login", authH.Login)
	api.POST("/logout", authH.Logout)
	api.GET("/check-session", authH.CheckSession)
	api.POST("/submit-comment", commentH.SubmitComment)

	if staticDir != "" {
		e.Static("/", staticDir)
	}
}
