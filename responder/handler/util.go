// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/go-chi/render"

	"cfnresponder/responder/model"
	"cfnresponder/responder/translate"
)

type ErrorType int

const (
	ClientInvalidRequest ErrorType = iota
	ClientMalformedEvent
	ClientAmbiguousOutcome
	ClientUnexpectedEventType
	ClientMalformedDestination
	DeliveryFailed
)

func (t ErrorType) String() string {
	switch t {
	case ClientInvalidRequest:
		return "Client.InvalidRequest"
	case ClientMalformedEvent:
		return "Client.MalformedEvent"
	case ClientAmbiguousOutcome:
		return "Client.AmbiguousOutcome"
	case ClientUnexpectedEventType:
		return "Client.UnexpectedEventType"
	case ClientMalformedDestination:
		return "Client.MalformedDestination"
	case DeliveryFailed:
		return "Delivery.Failed"
	}
	return fmt.Sprintf("Cannot stringify handler.ErrorType.%d", int(t))
}

type ErrorReply struct {
	model.ErrorResponse
	statusCode int
}

func newErrorReply(errType ErrorType, errMsg string) *ErrorReply {
	return &ErrorReply{
		ErrorResponse: model.ErrorResponse{ErrorType: errType.String(), ErrorMessage: errMsg},
		statusCode:    http.StatusBadRequest,
	}
}

// replyForError maps the parse/translate rejection taxonomy onto HTTP
// replies. All of these are the caller's fault; delivery failures go through
// newDeliveryFailureReply instead so the two stay distinguishable.
func replyForError(err error) *ErrorReply {
	errType := ClientInvalidRequest
	switch {
	case errors.Is(err, model.ErrMalformedEvent):
		errType = ClientMalformedEvent
	case errors.Is(err, model.ErrAmbiguousOutcome):
		errType = ClientAmbiguousOutcome
	case errors.Is(err, model.ErrUnexpectedEventType):
		errType = ClientUnexpectedEventType
	case errors.Is(err, translate.ErrMalformedDestination):
		errType = ClientMalformedDestination
	}
	return newErrorReply(errType, err.Error())
}

func newDeliveryFailureReply(err error) *ErrorReply {
	reply := newErrorReply(DeliveryFailed, err.Error())
	reply.statusCode = http.StatusBadGateway
	return reply
}

func (e *ErrorReply) Send(w http.ResponseWriter, r *http.Request) {
	render.Status(r, e.statusCode)
	render.JSON(w, r, &e.ErrorResponse)
}

func readBodyAndUnmarshalJSON(r *http.Request, dst interface{}) *ErrorReply {
	bodyBytes, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return newErrorReply(ClientInvalidRequest, fmt.Sprintf("Failed to read full body: %s", err))
	}

	if err = json.Unmarshal(bodyBytes, dst); err != nil {
		return newErrorReply(ClientInvalidRequest, fmt.Sprintf("Invalid json %s: %s", string(bodyBytes), err))
	}

	return nil
}
