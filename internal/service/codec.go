package service

import (
	"encoding/json"
	"fmt"
)

// jsonCodec replaces Connect's default protobuf-JSON codec so plain Go
// structs can be used as messages. It registers under the name "json", so
// requests with Content-Type application/json use it.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("invalid JSON message: %w", err)
	}
	return nil
}
