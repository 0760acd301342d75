// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"cfnresponder/responder/model"
	"cfnresponder/responder/translate"
)

// EventHandler accepts one invocation result event wrapped in its EventBridge
// envelope, translates it, and delivers the callback.
func EventHandler(w http.ResponseWriter, r *http.Request, deliverer Deliverer) {
	var envelope events.CloudWatchEvent
	if errReply := readBodyAndUnmarshalJSON(r, &envelope); errReply != nil {
		errReply.Send(w, r)
		return
	}

	event, err := model.FromEventBridge(envelope)
	if err != nil {
		log.WithError(err).Error("Failed to parse invocation result event")
		replyForError(err).Send(w, r)
		return
	}

	outbound, err := translate.Translate(event)
	if err != nil {
		log.WithError(err).Error("Failed to translate invocation result event")
		replyForError(err).Send(w, r)
		return
	}

	deliveryID := uuid.New().String()
	log.Infof("delivering callback %s: %s %s", deliveryID, outbound.Method, outbound.Path)

	if err := deliverer.Deliver(r.Context(), outbound); err != nil {
		log.WithError(err).Errorf("Failed to deliver callback %s", deliveryID)
		newDeliveryFailureReply(err).Send(w, r)
		return
	}

	render.JSON(w, r, &model.DeliveryResponse{Status: "delivered", DeliveryID: deliveryID})
}
