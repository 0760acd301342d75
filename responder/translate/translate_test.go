// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfnresponder/responder/model"
)

func successEvent(destination string, responsePayload string) *model.InvocationEvent {
	return &model.InvocationEvent{
		DestinationURL: destination,
		RequestPayload: model.RequestPayload{
			StackId:            json.RawMessage(`"S"`),
			RequestId:          json.RawMessage(`"R"`),
			LogicalResourceId:  json.RawMessage(`"L"`),
			PhysicalResourceId: json.RawMessage(`"P"`),
			ResponseURL:        destination,
		},
		Outcome: model.Outcome{Success: &model.SuccessOutcome{ResponsePayload: json.RawMessage(responsePayload)}},
	}
}

func failureEvent(destination, errorType, errorMessage string) *model.InvocationEvent {
	return &model.InvocationEvent{
		DestinationURL: destination,
		RequestPayload: model.RequestPayload{
			StackId:           json.RawMessage(`"S"`),
			RequestId:         json.RawMessage(`"R"`),
			LogicalResourceId: json.RawMessage(`"L"`),
			ResponseURL:       destination,
		},
		Outcome: model.Outcome{Failure: &model.FailureOutcome{ErrorType: errorType, ErrorMessage: errorMessage}},
	}
}

func TestTranslateSuccess(t *testing.T) {
	event := successEvent("https://host/path/a/b?x=1&y=hello%20world", `{"Data":"ok"}`)

	outbound, err := Translate(event)
	require.NoError(t, err)

	assert.Equal(t, "PUT", outbound.Method)
	assert.Equal(t, "a/b", outbound.Path)
	assert.Equal(t, []QueryParam{{"x", "1"}, {"y", "hello world"}}, outbound.Query)
	assert.Equal(t,
		`{"Status":"SUCCESS","Reason":"","PhysicalResourceId":"P","Data":"ok","StackId":"S","RequestId":"R","LogicalResourceId":"L"}`,
		string(outbound.Body))
}

func TestTranslateFailure(t *testing.T) {
	event := failureEvent("https://host/path/a/b?x=1&y=hello%20world", "ValueError", "it's broken")

	outbound, err := Translate(event)
	require.NoError(t, err)

	assert.Equal(t,
		`{"Status":"FAILED","Reason":"Unhandled error: ValueError: it's broken","PhysicalResourceId":"R","StackId":"S","RequestId":"R","LogicalResourceId":"L"}`,
		string(outbound.Body))
}

func TestTranslatePreservesPayloadKeyOrder(t *testing.T) {
	event := successEvent("https://host/p/k?x=1", `{"B":1,"A":2,"C":3}`)

	outbound, err := Translate(event)
	require.NoError(t, err)

	assert.Equal(t,
		`{"Status":"SUCCESS","Reason":"","PhysicalResourceId":"P","B":1,"A":2,"C":3,"StackId":"S","RequestId":"R","LogicalResourceId":"L"}`,
		string(outbound.Body))
}

func TestTranslatePhysicalResourceIdFallsBackToRequestId(t *testing.T) {
	event := successEvent("https://host/p/k?x=1", `{}`)
	event.RequestPayload.PhysicalResourceId = nil

	outbound, err := Translate(event)
	require.NoError(t, err)

	assert.Equal(t,
		`{"Status":"SUCCESS","Reason":"","PhysicalResourceId":"R","StackId":"S","RequestId":"R","LogicalResourceId":"L"}`,
		string(outbound.Body))
}

func TestTranslateFailureOmitsPayloadKeys(t *testing.T) {
	event := failureEvent("https://host/p/k?x=1", "Error", "boom")

	outbound, err := Translate(event)
	require.NoError(t, err)

	assert.NotContains(t, string(outbound.Body), `"Data"`)
	assert.Contains(t, string(outbound.Body), `"Status":"FAILED"`)
	assert.NotContains(t, string(outbound.Body), `"SUCCESS"`)
}

func TestTranslateCopiesNonStringValuesRaw(t *testing.T) {
	event := successEvent("https://host/p/k?x=1", `{"Count":3,"Tags":["a","b"],"Nested":{"k":"v"}}`)
	event.RequestPayload.StackId = json.RawMessage(`123`)

	outbound, err := Translate(event)
	require.NoError(t, err)

	assert.Equal(t,
		`{"Status":"SUCCESS","Reason":"","PhysicalResourceId":"P","Count":3,"Tags":["a","b"],"Nested":{"k":"v"},"StackId":123,"RequestId":"R","LogicalResourceId":"L"}`,
		string(outbound.Body))
}

func TestTranslateEscapesPayloadKeys(t *testing.T) {
	event := successEvent("https://host/p/k?x=1", `{"we\"ird":"v"}`)

	outbound, err := Translate(event)
	require.NoError(t, err)

	assert.Contains(t, string(outbound.Body), `"we\"ird":"v"`)
}

func TestTranslateDecodesPathAndQuery(t *testing.T) {
	event := successEvent("https://host/bucket/arn%3Aaws%3Akey/obj.json?X-Amz-Credential=AKIA%2Fus-east-1&X-Amz-Date=20260831T000000Z", `{}`)

	outbound, err := Translate(event)
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:key/obj.json", outbound.Path)
	assert.Equal(t, []QueryParam{
		{"X-Amz-Credential", "AKIA/us-east-1"},
		{"X-Amz-Date", "20260831T000000Z"},
	}, outbound.Query)
}

func TestTranslateRejectsMalformedDestinations(t *testing.T) {
	for name, destination := range map[string]string{
		"no path tail":       "https://host/path",
		"no query string":    "https://host/path/a/b",
		"pair without value": "https://host/path/a?x=1&flag",
		"bad percent escape": "https://host/path/a?x=%zz",
	} {
		t.Run(name, func(t *testing.T) {
			event := successEvent(destination, `{}`)
			_, err := Translate(event)
			assert.ErrorIs(t, err, ErrMalformedDestination)
		})
	}
}
