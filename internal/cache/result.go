package cache

import "encoding/json"

// Result is a typed view of a Snapshot.
type Result[T any] struct {
	Data      T
	IsLoading bool
	IsError   bool
	Err       *Problem
}

// Decode unmarshals a snapshot's payload into T. A snapshot without data
// yields the zero value; decode failures surface as an error state so
// render layers never see half-decoded data.
func Decode[T any](snap Snapshot) Result[T] {
	out := Result[T]{IsLoading: snap.IsLoading, IsError: snap.IsError, Err: snap.Err}
	if len(snap.Data) == 0 {
		return out
	}
	if err := json.Unmarshal(snap.Data, &out.Data); err != nil {
		var zero T
		out.Data = zero
		out.IsError = true
		out.Err = &Problem{Message: "decode response: " + err.Error()}
	}
	return out
}

// DecodeValue unmarshals a raw mutation result into T.
func DecodeValue[T any](data json.RawMessage) (T, error) {
	var out T
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
