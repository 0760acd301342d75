// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"

	"cfnresponder/responder/model"
	"cfnresponder/responder/translate"
)

type translatedQueryParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type translatedResponse struct {
	Method string                 `json:"method"`
	Path   string                 `json:"path"`
	Query  []translatedQueryParam `json:"query"`
	Body   json.RawMessage        `json:"body"`
}

// TranslateHandler runs the translator without delivering anything, returning
// the request that would have been issued. Useful for validating event wiring
// before pointing the rule at /events.
func TranslateHandler(w http.ResponseWriter, r *http.Request) {
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

	resp := translatedResponse{
		Method: outbound.Method,
		Path:   outbound.Path,
		Query:  make([]translatedQueryParam, 0, len(outbound.Query)),
		Body:   json.RawMessage(outbound.Body),
	}
	for _, param := range outbound.Query {
		resp.Query = append(resp.Query, translatedQueryParam{Key: param.Key, Value: param.Value})
	}

	render.JSON(w, r, &resp)
}
