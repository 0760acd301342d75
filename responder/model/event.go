// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/tidwall/gjson"
)

var ErrMalformedEvent = errors.New("MalformedEvent")
var ErrAmbiguousOutcome = errors.New("AmbiguousOutcome")
var ErrUnexpectedEventType = errors.New("UnexpectedEventType")

const (
	eventSource       = "lambda"
	detailTypeSuccess = "Lambda Function Invocation Result - Success"
	detailTypeFailure = "Lambda Function Invocation Result - Failure"
)

// RequestPayload mirrors the custom-resource request the invoked function
// received. Values are kept raw so they are copied into the callback body
// verbatim, preserving their original JSON type.
type RequestPayload struct {
	StackId            json.RawMessage `json:"StackId"`
	RequestId          json.RawMessage `json:"RequestId"`
	LogicalResourceId  json.RawMessage `json:"LogicalResourceId"`
	PhysicalResourceId json.RawMessage `json:"PhysicalResourceId,omitempty"`
	ResponseURL        string          `json:"ResponseURL"`
}

// SuccessOutcome carries the function's response document, raw so that key
// order survives into the callback body.
type SuccessOutcome struct {
	ResponsePayload json.RawMessage
}

type FailureOutcome struct {
	ErrorType    string
	ErrorMessage string
}

// Outcome is the success/failure variant of an invocation result. Exactly one
// of the two pointers is set; the discriminator is resolved once, at parse
// time, so consumers never re-derive it from payload shape.
type Outcome struct {
	Success *SuccessOutcome
	Failure *FailureOutcome
}

// InvocationEvent is one parsed "Lambda Function Invocation Result" record.
type InvocationEvent struct {
	DestinationURL string
	RequestPayload RequestPayload
	Outcome        Outcome
}

type eventDetail struct {
	RequestPayload  json.RawMessage            `json:"requestPayload"`
	ResponseContext map[string]json.RawMessage `json:"responseContext"`
	ResponsePayload json.RawMessage            `json:"responsePayload"`
}

type failurePayload struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
}

// ParseEvent parses the detail member of an invocation result event. A record
// that cannot be translated without guessing is rejected: forwarding a
// callback to the wrong place is worse than dropping the event.
func ParseEvent(detail []byte) (*InvocationEvent, error) {
	var d eventDetail
	if err := json.Unmarshal(detail, &d); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedEvent, err)
	}

	var req RequestPayload
	if err := json.Unmarshal(d.RequestPayload, &req); err != nil {
		return nil, fmt.Errorf("%w: requestPayload: %s", ErrMalformedEvent, err)
	}
	for _, field := range []struct {
		name  string
		value json.RawMessage
	}{
		{"StackId", req.StackId},
		{"RequestId", req.RequestId},
		{"LogicalResourceId", req.LogicalResourceId},
	} {
		if len(field.value) == 0 {
			return nil, fmt.Errorf("%w: requestPayload missing %s", ErrMalformedEvent, field.name)
		}
	}
	if req.ResponseURL == "" {
		return nil, fmt.Errorf("%w: requestPayload missing ResponseURL", ErrMalformedEvent)
	}

	outcome, err := parseOutcome(&d)
	if err != nil {
		return nil, err
	}

	return &InvocationEvent{
		DestinationURL: req.ResponseURL,
		RequestPayload: req,
		Outcome:        *outcome,
	}, nil
}

func parseOutcome(d *eventDetail) (*Outcome, error) {
	if _, failed := d.ResponseContext["functionError"]; failed {
		var failure failurePayload
		if err := json.Unmarshal(d.ResponsePayload, &failure); err != nil {
			return nil, fmt.Errorf("%w: function errored but responsePayload is not an error document: %s", ErrAmbiguousOutcome, err)
		}
		if failure.ErrorType == "" || failure.ErrorMessage == "" {
			return nil, fmt.Errorf("%w: function errored but errorType/errorMessage are missing", ErrAmbiguousOutcome)
		}
		return &Outcome{Failure: &FailureOutcome{ErrorType: failure.ErrorType, ErrorMessage: failure.ErrorMessage}}, nil
	}

	if !gjson.ParseBytes(d.ResponsePayload).IsObject() {
		return nil, fmt.Errorf("%w: no functionError marker and no responsePayload object", ErrAmbiguousOutcome)
	}
	return &Outcome{Success: &SuccessOutcome{ResponsePayload: d.ResponsePayload}}, nil
}

// FromEventBridge unwraps the EventBridge envelope an invocation result
// arrives in, checking it against the rule pattern this service subscribes to.
func FromEventBridge(envelope events.CloudWatchEvent) (*InvocationEvent, error) {
	if envelope.Source != eventSource {
		return nil, fmt.Errorf("%w: source %q", ErrUnexpectedEventType, envelope.Source)
	}
	if envelope.DetailType != detailTypeSuccess && envelope.DetailType != detailTypeFailure {
		return nil, fmt.Errorf("%w: detail-type %q", ErrUnexpectedEventType, envelope.DetailType)
	}
	return ParseEvent(envelope.Detail)
}
