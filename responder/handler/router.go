// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package handler exposes the responder over HTTP: an endpoint accepting
// invocation result events for delivery, a dry-run translation endpoint, and
// a ping.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"cfnresponder/responder/translate"
)

// Deliverer performs the outbound PUT for a translated callback.
type Deliverer interface {
	Deliver(ctx context.Context, req *translate.OutboundRequest) error
}

func NewHTTPRouter(deliverer Deliverer) *chi.Mux {
	r := chi.NewRouter()
	r.Use(accessLogDecorator)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) { PingHandler(w, r) })
	r.Post("/events", func(w http.ResponseWriter, r *http.Request) { EventHandler(w, r, deliverer) })
	r.Post("/translate", func(w http.ResponseWriter, r *http.Request) { TranslateHandler(w, r) })
	return r
}
