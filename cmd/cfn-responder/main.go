// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cfnresponder/responder/forward"
	"cfnresponder/responder/handler"
	"cfnresponder/responder/logging"
)

type options struct {
	LogLevel        string `long:"log-level" default:"info" description:"log level"`
	ListenAddress   string `long:"listen-address" default:"0.0.0.0:8080" description:"address to serve the event API on"`
	Region          string `long:"region" env:"AWS_REGION" default:"us-east-1" description:"region used to derive the callback relay host"`
	URLSuffix       string `long:"url-suffix" default:"amazonaws.com" description:"partition URL suffix for the relay host"`
	RelayBaseURL    string `long:"relay-base-url" description:"override the derived relay endpoint"`
	DeliveryTimeout int    `long:"delivery-timeout" default:"30" description:"timeout per delivery attempt, in seconds"`
	DeliveryMaxTime int    `long:"delivery-max-elapsed" default:"300" description:"total retry budget for one delivery, in seconds"`
}

func main() {
	opts := getCLIArgs()
	logging.SetLevel(opts.LogLevel)

	baseURL := opts.RelayBaseURL
	if baseURL == "" {
		baseURL = "https://" + forward.RelayHost(opts.Region, opts.URLSuffix)
	}

	forwarder := forward.NewForwarder(forward.Config{
		BaseURL:        baseURL,
		AttemptTimeout: time.Duration(opts.DeliveryTimeout) * time.Second,
		MaxElapsed:     time.Duration(opts.DeliveryMaxTime) * time.Second,
	})

	srv := &http.Server{
		Addr:    opts.ListenAddress,
		Handler: handler.NewHTTPRouter(forwarder),
	}

	var errg errgroup.Group
	errg.Go(func() error {
		log.Infof("serving on %s, relaying callbacks to %s", opts.ListenAddress, baseURL)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to serve")
		}
		return nil
	})
	errg.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		sigReceived := <-sig
		log.WithField("signal", sigReceived.String()).Info("Received signal")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	if err := errg.Wait(); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
}

func getCLIArgs() options {
	var opts options
	parser := flags.NewParser(&opts, flags.IgnoreUnknown)
	if _, err := parser.ParseArgs(os.Args); err != nil {
		log.WithError(err).Fatal("Failed to parse command line arguments:", os.Args)
	}
	return opts
}
