package grpcserver

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages on the wire are google.protobuf.Struct; handlers work with plain Go
// values and convert through their JSON form.

// ToStruct converts a JSON-marshalable value whose JSON form is an object.
func ToStruct(v any) (*structpb.Struct, error) {
	if v == nil {
		return &structpb.Struct{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("to struct: %w", err)
	}
	return out, nil
}

// FromStruct decodes in into v.
func FromStruct(in *structpb.Struct, v any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
