// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package model

// ErrorResponse is a standard error response,
// providing information about the error.
type ErrorResponse struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorType    string `json:"errorType"`
}

// DeliveryResponse reports a completed callback delivery.
type DeliveryResponse struct {
	Status     string `json:"status"`
	DeliveryID string `json:"deliveryId"`
}
