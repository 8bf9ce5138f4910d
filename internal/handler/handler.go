package handler

import (
	"github.com/leca/mediastudio/internal/auth"
	"github.com/leca/mediastudio/internal/billing"
	"github.com/leca/mediastudio/internal/config"
	"github.com/leca/mediastudio/internal/database"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	DB       database.Database
	Config   *config.Config
	Sessions *auth.Sessions
	Billing  *billing.Service
}
