// Package payload defines the event sent to the import function by the
// deployment-time trigger.
package payload

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

type RequestType string

const (
	RequestCreate RequestType = "Create"
	RequestUpdate RequestType = "Update"
	RequestDelete RequestType = "Delete"
)

var ErrInvalidPayload = errors.New("invalid invocation payload")

//go:embed schema/invocation.schema.json
var invocationSchema []byte

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

type Event struct {
	RequestType        RequestType        `json:"RequestType"`
	ResourceProperties ResourceProperties `json:"ResourceProperties"`
}

type ResourceProperties struct {
	AppArn          string `json:"AppArn"`
	SourceStackName string `json:"SourceStackName"`
}

func New(requestType RequestType, appArn, sourceStackName string) Event {
	return Event{
		RequestType: requestType,
		ResourceProperties: ResourceProperties{
			AppArn:          appArn,
			SourceStackName: sourceStackName,
		},
	}
}

// Marshal encodes the event without HTML escaping. Unresolved CDK tokens in
// AppArn pass through verbatim so synthesis can substitute them.
func (e Event) Marshal() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Parse validates raw against the invocation schema and decodes it.
func Parse(raw []byte) (Event, error) {
	schema, err := loadSchema()
	if err != nil {
		return Event{}, err
	}
	if !json.Valid(raw) {
		return Event{}, fmt.Errorf("%w: not a JSON document", ErrInvalidPayload)
	}
	result := schema.ValidateJSON(raw)
	if !result.IsValid() {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidPayload, result.Errors)
	}
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return event, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiledSchema, compileErr = compiler.Compile(invocationSchema)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile invocation schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}
