package handler

import (
	"phonebook/internal/app/account"
	"phonebook/internal/app/contact"
	"phonebook/internal/app/form"
	"phonebook/internal/app/live"
	"phonebook/internal/configs"
	"phonebook/internal/pkg/limiter"
)

// AppDeps carries everything the handlers need. The limiters are owned by the caller,
// which closes them on shutdown; a nil limiter disables rate limiting of its routes.
type AppDeps struct {
	Config   *configs.AppConfig
	Accounts *account.Service
	Contacts *contact.Service
	Forms    *form.Registry
	Live     *live.Manager

	AuthLimiter    *limiter.IPRateLimiter
	ContactLimiter *limiter.IPRateLimiter
	FormLimiter    *limiter.IPRateLimiter
}
