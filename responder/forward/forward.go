// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package forward issues translated callback requests against the relay
// endpoint, applying the delivery timeout and retry policy the translator
// itself stays free of.
package forward

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"cfnresponder/responder/translate"
)

var ErrDeliveryFailed = errors.New("DeliveryFailed")

const (
	defaultAttemptTimeout  = 30 * time.Second
	defaultMaxElapsed      = 5 * time.Minute
	defaultInitialInterval = 500 * time.Millisecond
)

// RelayHost derives the well-known callback relay endpoint for a region in a
// partition, e.g. cloudformation-custom-resource-response-useast1.s3.amazonaws.com.
func RelayHost(region, urlSuffix string) string {
	return fmt.Sprintf("cloudformation-custom-resource-response-%s.s3.%s",
		strings.ReplaceAll(region, "-", ""), urlSuffix)
}

type Config struct {
	// BaseURL is scheme plus relay host, without a trailing slash.
	BaseURL string
	// AttemptTimeout bounds a single delivery attempt.
	AttemptTimeout time.Duration
	// MaxElapsed bounds the total time spent retrying one delivery.
	MaxElapsed time.Duration
	// InitialInterval is the first backoff interval between attempts.
	InitialInterval time.Duration
	// Client overrides the HTTP client, for tests.
	Client *http.Client
}

type Forwarder struct {
	baseURL         string
	client          *http.Client
	attemptTimeout  time.Duration
	maxElapsed      time.Duration
	initialInterval time.Duration
}

func NewForwarder(cfg Config) *Forwarder {
	f := &Forwarder{
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		client:          cfg.Client,
		attemptTimeout:  cfg.AttemptTimeout,
		maxElapsed:      cfg.MaxElapsed,
		initialInterval: cfg.InitialInterval,
	}
	if f.client == nil {
		f.client = http.DefaultClient
	}
	if f.attemptTimeout == 0 {
		f.attemptTimeout = defaultAttemptTimeout
	}
	if f.maxElapsed == 0 {
		f.maxElapsed = defaultMaxElapsed
	}
	if f.initialInterval == 0 {
		f.initialInterval = defaultInitialInterval
	}
	return f
}

// Deliver performs the callback PUT. Network errors and 5xx responses are
// retried with exponential backoff until MaxElapsed; any other non-2xx
// response fails the delivery immediately since the pre-signed URL will not
// start accepting it later.
func (f *Forwarder) Deliver(ctx context.Context, req *translate.OutboundRequest) error {
	target := f.URL(req)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.initialInterval
	bo.MaxElapsedTime = f.maxElapsed

	return backoff.Retry(func() error {
		err := f.attempt(ctx, req.Method, target, req.Body)
		if err != nil {
			log.WithError(err).Warnf("delivery attempt failed: %s %s", req.Method, target)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

// URL recomposes the destination the way the pre-signed URL encoded it:
// sigv4 canonical percent-encoding, query pair order preserved.
func (f *Forwarder) URL(req *translate.OutboundRequest) string {
	var sb strings.Builder
	sb.WriteString(f.baseURL)
	sb.WriteByte('/')
	sb.WriteString(escapePath(req.Path))
	sb.WriteByte('?')
	for i, param := range req.Query {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(escapeComponent(param.Key))
		sb.WriteByte('=')
		sb.WriteString(escapeComponent(param.Value))
	}
	return sb.String()
}

func (f *Forwarder) attempt(ctx context.Context, method, target string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	// No Content-Type header: the pre-signed URL is signed without one.

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode/100 == 2:
		return nil
	case resp.StatusCode/100 == 5:
		return fmt.Errorf("%w: relay returned %d", ErrDeliveryFailed, resp.StatusCode)
	default:
		return backoff.Permanent(fmt.Errorf("%w: relay returned %d", ErrDeliveryFailed, resp.StatusCode))
	}
}
