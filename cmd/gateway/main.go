package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-sso-gateway/assertion"
	"github.com/jrsteele09/go-sso-gateway/internal/config"
	"github.com/jrsteele09/go-sso-gateway/internal/sweeper"
	"github.com/jrsteele09/go-sso-gateway/pendinglogin"
	"github.com/jrsteele09/go-sso-gateway/provider"
	"github.com/jrsteele09/go-sso-gateway/server"
	"github.com/jrsteele09/go-sso-gateway/sessions"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running gateway: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Gateway stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	if err := config.Validate(c); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	idp, err := provider.New(ctx, c, c.GetExternalURL()+server.RouteCallback)
	if err != nil {
		return fmt.Errorf("provider.New: %w", err)
	}

	signer, err := assertion.NewSigner(c.GetSecret(), c.GetExternalURL(), c.GetSessionTTL())
	if err != nil {
		return fmt.Errorf("assertion.NewSigner: %w", err)
	}

	sessionRepo := sessions.NewInMemoryRepo()
	pendingRepo := pendinglogin.NewInMemoryRepo(c.GetPendingCapacity())

	srv, err := server.New(c, server.Repos{Sessions: sessionRepo, Pending: pendingRepo}, idp, signer)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	sw := sweeper.New(c.GetSweepInterval())
	sw.Register("sessions", sessionRepo)
	sw.Register("pending_logins", pendingRepo)
	go sw.Run(ctx)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Printf("Gateway listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
