// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// cfn-responder-lambda is the EventBridge-target deployment shape: the rule
// invokes this function directly with the invocation result envelope, and the
// function delivers the callback itself.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"

	"cfnresponder/responder/forward"
	"cfnresponder/responder/logging"
	"cfnresponder/responder/model"
	"cfnresponder/responder/translate"
)

var forwarder *forward.Forwarder

func GetenvWithDefault(key string, defaultValue string) string {
	envValue := os.Getenv(key)

	if envValue == "" {
		return defaultValue
	}

	return envValue
}

func handleEvent(ctx context.Context, envelope events.CloudWatchEvent) error {
	event, err := model.FromEventBridge(envelope)
	if err != nil {
		log.WithError(err).Error("Failed to parse invocation result event")
		return err
	}

	outbound, err := translate.Translate(event)
	if err != nil {
		log.WithError(err).Error("Failed to translate invocation result event")
		return err
	}

	return forwarder.Deliver(ctx, outbound)
}

func main() {
	logging.SetLevel(GetenvWithDefault("LOG_LEVEL", "info"))

	baseURL := os.Getenv("RELAY_BASE_URL")
	if baseURL == "" {
		region := GetenvWithDefault("AWS_REGION", "us-east-1")
		baseURL = "https://" + forward.RelayHost(region, GetenvWithDefault("URL_SUFFIX", "amazonaws.com"))
	}
	forwarder = forward.NewForwarder(forward.Config{BaseURL: baseURL})

	lambda.Start(handleEvent)
}
