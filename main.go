package main

import (
	"context"
	"flag"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/jasonlvhit/gocron"
	"github.com/peterbourgon/ff"
	log "github.com/sirupsen/logrus"

	"github.com/passage-nav/console/client"
	"github.com/passage-nav/console/config"
	"github.com/passage-nav/console/console"
	"github.com/passage-nav/console/notify"
	"github.com/passage-nav/console/plan"
	"github.com/passage-nav/console/reference"
	"github.com/passage-nav/console/session"
	"github.com/passage-nav/console/weather"
)

func main() {

	fs := flag.NewFlagSet("passage-console", flag.ExitOnError)
	var (
		configFile   = fs.String("config", "", "path to the YAML configuration file")
		listen       = fs.String("listen", ":8080", "console listen address")
		service      = fs.String("service", "http://localhost:8000", "routing service base address")
		mapToken     = fs.String("map-token", "", "map access token handed to the UI")
		gribFile     = fs.String("grib-file", "", "GRIB2 file backing the weather overlay")
		deeplink     = fs.String("deeplink", "", "deep-link query to restore the session from")
		debug        = fs.Bool("debug", false, "debug logging")
		cpuprofile   = fs.Bool("cpuprofile", false, "profile plan handling")
		xmppHost     = fs.String("xmpp-host", "", "")
		xmppJid      = fs.String("xmpp-jid", "", "")
		xmppPassword = fs.String("xmpp-password", "", "")
		xmppTo       = fs.String("xmpp-to", "", "")
	)
	ff.Parse(fs, os.Args[1:], ff.WithEnvVarNoPrefix())

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg := &config.Config{}
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatalf("Load configuration: %v", err)
		}
	}
	if cfg.Service == "" {
		cfg.Service = *service
	}
	if cfg.MapToken == "" {
		cfg.MapToken = *mapToken
	}
	if cfg.GribFile == "" {
		cfg.GribFile = *gribFile
	}

	ctx := context.Background()
	c := client.New(cfg.Service)

	sess := session.New(c)
	if cfg.Defaults.SpeedKts > 0 {
		sess.SetSpeed(cfg.Defaults.SpeedKts)
	}
	sess.SetWeights(plan.Weights{
		Piracy:         cfg.Defaults.PiracyWeight,
		Storm:          cfg.Defaults.StormWeight,
		DepthPenaltyNm: cfg.Defaults.DepthPenaltyNm,
	})

	notifier := notify.Notifier{Config: notify.Config{
		Host:     *xmppHost,
		Jid:      *xmppJid,
		Password: *xmppPassword,
		To:       *xmppTo,
	}}
	if notifier.Enabled() {
		sess.Subscribe(func(e session.Event) {
			switch e.Kind {
			case session.EventPlanSucceeded:
				if result := sess.Result(); result != nil {
					notifier.PlanSucceeded(result)
				}
			case session.EventPlanFailed:
				if err := sess.LastError(); err != nil {
					notifier.PlanFailed(err.Error())
				}
			}
		})
	}

	var field *weather.Field
	if cfg.GribFile != "" {
		var err error
		field, err = weather.Load(cfg.GribFile)
		if err != nil {
			log.Warnf("Weather overlay disabled: %v", err)
			field = nil
		}
	}

	log.Info("Load reference collections")
	store := reference.Load(ctx, c, cfg.Sources)

	q := url.Values{}
	if *deeplink != "" {
		var err error
		q, err = url.ParseQuery(strings.TrimPrefix(*deeplink, "?"))
		if err != nil {
			log.Warnf("Unreadable deep link, starting clean: %v", err)
			q = url.Values{}
		}
	}
	if submitted, err := sess.Hydrate(ctx, q); err != nil {
		log.Warnf("Restored plan did not succeed: %v", err)
	} else if submitted {
		log.Info("Session restored from deep link")
	}

	s := gocron.NewScheduler()
	job := s.Every(15).Seconds()
	job.Do(func() {
		ok, err := c.Health(context.Background())
		sess.SetServiceHealth(err == nil && ok)
	})
	go s.Start()

	router := console.InitServer(console.Config{
		CPUProfile: *cpuprofile,
		MapToken:   cfg.MapToken,
	}, sess, store, field)

	handler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(router)

	log.Infof("Start console on %s (service %s)", *listen, cfg.Service)
	log.Fatal(http.ListenAndServe(*listen, handler))
}
