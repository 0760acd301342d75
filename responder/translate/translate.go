// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package translate converts an invocation result event into the PUT request
// that delivers its custom-resource callback.
package translate

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"cfnresponder/responder/model"
)

var ErrMalformedDestination = errors.New("MalformedDestination")

// QueryParam is one decoded key=value pair from the destination URL. Pair
// order is preserved end to end; pre-signed URL signatures can be
// order-sensitive.
type QueryParam struct {
	Key   string
	Value string
}

// OutboundRequest describes one callback delivery: PUT Body against the relay
// host at Path with Query.
type OutboundRequest struct {
	Method string
	Path   string
	Query  []QueryParam
	Body   []byte
}

// Translate converts one invocation result into the callback request that
// satisfies it. It is pure, performs no I/O, and is safe for concurrent use.
func Translate(event *model.InvocationEvent) (*OutboundRequest, error) {
	path, query, err := splitDestination(event.DestinationURL)
	if err != nil {
		return nil, err
	}

	return &OutboundRequest{
		Method: http.MethodPut,
		Path:   path,
		Query:  query,
		Body:   buildBody(event),
	}, nil
}

// splitDestination extracts the forwardable tail of a pre-signed URL shaped
// scheme://host/prefix/REST-OF-PATH?QUERY. Everything up to and including the
// single prefix segment is discarded; the relay host already carries it. A
// host with embedded slashes or a multi-segment prefix would mis-split here,
// which is a structural assumption of the URLs this service receives, not
// something to generalize.
func splitDestination(destination string) (string, []QueryParam, error) {
	parts := strings.SplitN(destination, "/", 5)
	if len(parts) < 5 {
		return "", nil, fmt.Errorf("%w: %q lacks a path tail", ErrMalformedDestination, destination)
	}

	rawPath, rawQuery, found := strings.Cut(parts[4], "?")
	if !found {
		return "", nil, fmt.Errorf("%w: %q has no query string", ErrMalformedDestination, destination)
	}

	path, err := url.QueryUnescape(rawPath)
	if err != nil {
		return "", nil, fmt.Errorf("%w: path: %s", ErrMalformedDestination, err)
	}

	query := make([]QueryParam, 0, strings.Count(rawQuery, "&")+1)
	for _, pair := range strings.Split(rawQuery, "&") {
		rawKey, rawValue, found := strings.Cut(pair, "=")
		if !found {
			return "", nil, fmt.Errorf("%w: query pair %q has no value", ErrMalformedDestination, pair)
		}
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return "", nil, fmt.Errorf("%w: query key: %s", ErrMalformedDestination, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return "", nil, fmt.Errorf("%w: query value: %s", ErrMalformedDestination, err)
		}
		query = append(query, QueryParam{Key: key, Value: value})
	}

	return path, query, nil
}

// buildBody renders the callback document. The body is materialized as bytes
// rather than a map: downstream consumers can be sensitive to key order and
// Go maps cannot hold it. Request payload fields and success payload values
// are spliced in raw, preserving their original JSON representation.
func buildBody(event *model.InvocationEvent) []byte {
	var b bytes.Buffer
	b.WriteByte('{')

	if failure := event.Outcome.Failure; failure != nil {
		b.WriteString(`"Status":"FAILED","Reason":"Unhandled error: `)
		b.WriteString(escapeJSONString(failure.ErrorType))
		b.WriteString(`: `)
		b.WriteString(escapeJSONString(failure.ErrorMessage))
		b.WriteString(`",`)
	} else {
		b.WriteString(`"Status":"SUCCESS","Reason":"",`)
	}

	b.WriteString(`"PhysicalResourceId":`)
	if len(event.RequestPayload.PhysicalResourceId) > 0 {
		b.Write(event.RequestPayload.PhysicalResourceId)
	} else {
		b.Write(event.RequestPayload.RequestId)
	}
	b.WriteByte(',')

	if success := event.Outcome.Success; success != nil {
		gjson.ParseBytes(success.ResponsePayload).ForEach(func(key, value gjson.Result) bool {
			b.WriteByte('"')
			b.WriteString(escapeJSONString(key.String()))
			b.WriteString(`":`)
			b.WriteString(value.Raw)
			b.WriteByte(',')
			return true
		})
	}

	b.WriteString(`"StackId":`)
	b.Write(event.RequestPayload.StackId)
	b.WriteString(`,"RequestId":`)
	b.Write(event.RequestPayload.RequestId)
	b.WriteString(`,"LogicalResourceId":`)
	b.Write(event.RequestPayload.LogicalResourceId)
	b.WriteByte('}')

	return b.Bytes()
}
