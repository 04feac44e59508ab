package lockbox

import (
	"reflect"
	"testing"
)

func TestJSONCodec(t *testing.T) {
	c := JSON()

	if c.ContentType() != "application/json" {
		t.Errorf("ContentType() = %q, want application/json", c.ContentType())
	}

	data, err := c.Marshal(map[string]any{"foo": "bar"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var out any
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if !reflect.DeepEqual(out, map[string]any{"foo": "bar"}) {
		t.Errorf("round-trip = %v", out)
	}
}

func TestMsgpackCodec(t *testing.T) {
	c := Msgpack()

	if c.ContentType() != "application/msgpack" {
		t.Errorf("ContentType() = %q, want application/msgpack", c.ContentType())
	}

	data, err := c.Marshal(map[string]any{"foo": "bar"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var out any
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	obj, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("Unmarshal() = %T, want map", out)
	}
	if obj["foo"] != "bar" {
		t.Errorf("round-trip = %v", out)
	}
}
