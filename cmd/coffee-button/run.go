package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/sweeney/coffee-button/internal/coffee"
	"github.com/sweeney/coffee-button/internal/config"
	"github.com/sweeney/coffee-button/internal/feedback"
	"github.com/sweeney/coffee-button/internal/gpio"
	"github.com/sweeney/coffee-button/internal/logic"
	"github.com/sweeney/coffee-button/internal/mqtt"
	"github.com/sweeney/coffee-button/internal/notify"
	"github.com/sweeney/coffee-button/internal/quotes"
	"github.com/sweeney/coffee-button/internal/sched"
	"github.com/sweeney/coffee-button/internal/slack"
	"github.com/sweeney/coffee-button/internal/status"
	"github.com/sweeney/coffee-button/internal/web"
)

// systemPublisher receives STARTUP, HEARTBEAT and SHUTDOWN events.
type systemPublisher interface {
	PublishSystem(event mqtt.SystemEvent) error
}

// logSystem stands in for MQTT when only Slack is configured.
type logSystem struct{}

func (logSystem) PublishSystem(event mqtt.SystemEvent) error {
	log.Printf("system: %s %s", event.Event, event.Reason)
	return nil
}

// run holds the LED on while starting and blinks it fast if startup fails.
func run(cfg config.Config) error {
	var light gpio.Light
	if cfg.LEDEnabled() {
		l, err := gpio.NewRealLight(cfg.GPIOChip, cfg.PinLED)
		if err != nil {
			log.Printf("led: %v, continuing without", err)
		} else {
			defer l.Close()
			light = l
		}
	}

	var led *feedback.LED
	if light != nil {
		led = feedback.NewLED(light)
		led.Steady(true)
	}

	err := start(cfg, led)
	if err != nil && led != nil {
		led.Play(context.Background(), feedback.PatternFatal)
	}
	return err
}

func start(cfg config.Config, led *feedback.LED) error {
	button, err := gpio.NewRealButton(cfg.GPIOChip, cfg.PinButton)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer button.Close()

	quoteSrc, err := quotes.Load(afero.NewOsFs(), cfg.QuotesFile)
	if err != nil {
		return fmt.Errorf("load quotes: %w", err)
	}

	var (
		notifiers  []notify.Notifier
		system     systemPublisher = logSystem{}
		mqttStatus mqtt.ConnectionStatus
	)
	if cfg.UsesMQTT() {
		pub, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:   cfg.Broker,
			ClientID: cfg.ClientID,
			Messages: cfg.Messages(),
		})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer pub.Close()
		notifiers = append(notifiers, pub)
		system = pub
		mqttStatus = pub
	}
	if cfg.UsesSlack() {
		notifiers = append(notifiers, slack.New(slack.Config{
			Token:    cfg.SlackToken,
			Channel:  cfg.SlackChannel,
			Username: cfg.SlackUsername,
			Icon:     cfg.SlackIcon,
			APIURL:   cfg.SlackAPIURL,
		}, cfg.Messages()))
	}

	var notifier notify.Notifier = notifiers[0]
	if len(notifiers) > 1 {
		notifier = &notify.Fanout{
			Notifiers: notifiers,
			OnPartial: func(err error) { log.Printf("dispatch: partial delivery: %v", err) },
		}
	}

	var signalers feedback.Multi
	if cfg.Console {
		signalers = append(signalers, feedback.NewConsole(os.Stdout))
	}
	if led != nil {
		signalers = append(signalers, led)
	}

	engine := coffee.New(coffee.Config{Timing: cfg.Timing(), QueueSize: cfg.QueueSize}, sched.Real{}, notifier, signalers, quoteSrc)
	defer engine.Close()

	tracker := status.NewTracker(time.Now(), statusConfig(cfg))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := system.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if cfg.HTTP != "" {
		srv := web.New(cfg.HTTP, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)
	if led != nil {
		led.Steady(false)
		go led.Run(ctx)
	}

	log.Printf("started: poll=%v debounce=%v window=%v stale=%v notifier=%s quotes=%d",
		cfg.Poll, cfg.Debounce, cfg.TripleWindow, cfg.StaleAfter, cfg.Notifier, quoteSrc.Len())

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(button, engine, system, mqttStatus, tracker, cfg.Heartbeat, time.Now, ticker.C, sigCh)
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		PollMs:         cfg.Poll.Milliseconds(),
		DebounceMs:     cfg.Debounce.Milliseconds(),
		TripleWindowMs: cfg.TripleWindow.Milliseconds(),
		StaleAfterS:    int64(cfg.StaleAfter.Seconds()),
		HeartbeatMs:    cfg.Heartbeat.Milliseconds(),
		Notifier:       cfg.Notifier,
		Broker:         cfg.Broker,
		HTTPPort:       cfg.HTTP,
	}
}

// runLoop samples the button on every tick until a signal arrives.
func runLoop(button gpio.Button, engine *coffee.Engine, system systemPublisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	hb := logic.NewHeartbeat(now())

	refresh := func() {
		if tracker == nil {
			return
		}
		tracker.Update(engine.ButtonState(), engine.Stats())
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				refresh()
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := system.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			pressed, err := button.Pressed()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}
			engine.Sample(pressed, t)

			if hbData := hb.Check(t, heartbeat, engine.Counts()); hbData != nil {
				c := hbData.Counts
				log.Printf("heartbeat: uptime=%v presses=%d fresh=%d stale=%d quotes=%d failures=%d",
					hbData.Uptime, c.Presses, c.Fresh, c.Stale, c.Quotes, c.Failures)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					refresh()
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := system.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			refresh()
		}
	}
}
