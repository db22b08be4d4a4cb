package app

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/agrohub/transportbot/bot/calendarkb"
	"github.com/agrohub/transportbot/bot/dispatch"
	"github.com/agrohub/transportbot/bot/flow"
	"github.com/agrohub/transportbot/bot/session"
	"github.com/agrohub/transportbot/bot/settlements"
	"github.com/agrohub/transportbot/bot/storage"
	"github.com/agrohub/transportbot/core/bootstrap"
	tg "github.com/agrohub/transportbot/core/telegram"
	"github.com/agrohub/transportbot/core/telegram/commands"
	"github.com/agrohub/transportbot/core/telegram/middleware"
	"github.com/agrohub/transportbot/core/telegram/router"
)

// App carries the wired bot: database, session store, dialogue engine and
// the publisher bound to the live transport on start.
type App struct {
	cfg       *Config
	db        *sqlx.DB
	sessions  *session.Repository
	engine    *flow.Engine
	publisher *dispatch.Telegram
	bot       *tele.Bot
}

// Bootstrap initializes infrastructure (logger, database, migrations) and
// assembles the dialogue engine.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	departments := make([]flow.Department, 0, len(cfg.Departments))
	for _, d := range cfg.Departments {
		departments = append(departments, flow.Department{Name: d.Name, ThreadID: d.ThreadID})
	}

	sessions := session.NewRepository()
	publisher := dispatch.NewTelegram(cfg.Dispatch.TargetChatID)
	engine := flow.New(
		sessions,
		storage.NewTemplates(res.DB),
		storage.NewContacts(res.DB),
		settlements.NewClient(cfg.Search),
		publisher,
		flow.Config{
			Departments:    departments,
			DefaultCompany: cfg.Quick.DefaultCompany,
		},
	)

	return &App{
		cfg:       cfg,
		db:        res.DB,
		sessions:  sessions,
		engine:    engine,
		publisher: publisher,
	}, nil
}

// TelegramRunOptions wires registry, middleware and routes for the runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Почати заповнення заявки",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.handleCancel,
		Description: "Скасувати заповнення",
	})
	// Pinning leaves a permanent message in the group, so only the
	// operator may invoke it. With no admin_id configured the gate is open.
	reg.RegisterCommand("/request", commands.Command{
		Handler:     a.handleRequest,
		Description: "Закріпити кнопку заявки в групі",
		AdminOnly:   true,
	})

	// Calendar presses only matter while a date question is on screen.
	calendarHandler := middleware.State(a.sessions,
		string(session.StateDateCalendar),
		string(session.StateDatePeriodEnd),
	)(a.handleCalendar)
	if err := reg.RegisterCallback(calendarkb.Unique, calendarHandler); err != nil {
		return tg.RunOptions{}, err
	}
	reg.SetTextFallback(a.handleIdleText)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return c.Send("Ця команда доступна лише адміністратору.")
		},
	})
	routes = append(routes, router.TextRoutes(fsmAdapter{a}, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return tg.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(&a.cfg.Core, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.bot = rt.Bot
			a.publisher.Bind(rt.Bot)
			ttl := time.Duration(a.cfg.Session.IdleTTLMinutes) * time.Minute
			interval := time.Duration(a.cfg.Session.JanitorIntervalMinutes) * time.Minute
			a.sessions.StartJanitor(ctx, ttl, interval)
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
