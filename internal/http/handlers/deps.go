package handlers

import (
	"autocare/internal/api"
	"autocare/internal/config"
	"autocare/internal/kv"
	"autocare/internal/notify"
	"autocare/internal/session"
	"autocare/internal/store"
)

type Deps struct {
	Pages         *PageHandler
	Auth          *AuthHandler
	Wizard        *WizardHandler
	Bookings      *BookingsHandler
	Admin         *AdminHandler
	Notifications *NotificationHandler
}

func NewDeps(cfg config.Config, kvs *kv.Store, client *api.Client, sessions *session.Manager, data *store.Store, feeds *notify.Registry) *Deps {
	return &Deps{
		Pages:         &PageHandler{Data: data},
		Auth:          &AuthHandler{Sessions: sessions, Feeds: feeds, Secret: cfg.SessionSecret},
		Wizard:        &WizardHandler{Data: data, Sessions: sessions, KV: kvs, Secret: cfg.SessionSecret},
		Bookings:      &BookingsHandler{Data: data, Secret: cfg.SessionSecret},
		Admin:         &AdminHandler{Data: data, Feeds: feeds, Secret: cfg.SessionSecret},
		Notifications: &NotificationHandler{API: client, Feeds: feeds, Secret: cfg.SessionSecret},
	}
}
