package model

import "encoding/json"

// PersonRequest is the JSON body accepted by the create and update endpoints.
// All fields are optional on the wire. The create endpoint requires name and email.
type PersonRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   OptionalString `json:"phone,omitzero"`
	Address OptionalString `json:"address,omitzero"`
	Age     *int64  `json:"age,omitempty"`
}

// Created is the response body of a successful create.
type Created struct {
	Message string `json:"message"`
	Id      int64  `json:"id"`
}

// Message is the response body of successful updates and deletes.
type Message struct {
	Message string `json:"message"`
}

// Status is the response body of the health and readiness endpoints.
type Status struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorBody is the response body of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
}

// OptionalString is a string field that tells an omitted key apart from an explicit null.
type OptionalString struct {
	Present bool
	Value   *string
}

// SomeString returns a present, non-null value.
func SomeString(value string) OptionalString {
	return OptionalString{Present: true, Value: &value}
}

func (o OptionalString) IsZero() bool {
	return !o.Present
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// UnmarshalJSON is only called for keys present in the document, null included.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.Value = nil
	return json.Unmarshal(data, &o.Value)
}

// Or returns the value, the fallback if the key was omitted, or nil for an explicit null.
func (o OptionalString) Or(fallback string) *string {
	if !o.Present {
		return &fallback
	}
	return o.Value
}
