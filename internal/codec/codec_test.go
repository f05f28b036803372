package codec

import (
	"errors"
	"testing"
)

type fakeCodec struct {
	name     string
	enc, dec bool
}

func (f fakeCodec) Name() string                   { return f.name }
func (f fakeCodec) CanEncode() bool                { return f.enc }
func (f fakeCodec) CanDecode() bool                { return f.dec }
func (f fakeCodec) Encode(*Params) ([]byte, error) { return []byte(f.name), nil }
func (f fakeCodec) Decode([]byte) (*Frame, error)  { return &Frame{}, nil }

func TestRegisterAndGet(t *testing.T) {
	Register(fakeCodec{name: "fake-a", enc: true, dec: true})
	c, ok := Get("fake-a")
	if !ok || c.Name() != "fake-a" {
		t.Fatal("registered backend not retrievable")
	}
	if _, ok := Get("no-such"); ok {
		t.Error("Get returned an unregistered backend")
	}
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	Register(fakeCodec{name: "fake-first", enc: true})
	Register(fakeCodec{name: "fake-second", dec: true})
	names := List()
	var first, second = -1, -1
	for i, n := range names {
		switch n {
		case "fake-first":
			first = i
		case "fake-second":
			second = i
		}
	}
	if first < 0 || second < 0 || first > second {
		t.Errorf("registration order not preserved: %v", names)
	}
}

func TestResolve(t *testing.T) {
	Register(fakeCodec{name: "fake-decoder", dec: true})
	Register(fakeCodec{name: "fake-encoder", enc: true})

	if _, err := Resolve("fake-decoder", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(decode-only for encode) = %v, want ErrNotFound", err)
	}
	c, err := Resolve("fake-encoder", true)
	if err != nil || c.Name() != "fake-encoder" {
		t.Fatalf("Resolve by name = %v, %v", c, err)
	}
	c, err = Resolve("auto", true)
	if err != nil {
		t.Fatalf("Resolve(auto): %v", err)
	}
	if !c.CanEncode() {
		t.Error("auto resolution picked a backend that cannot encode")
	}
	if _, err := Resolve("missing", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(missing) = %v, want ErrNotFound", err)
	}
}
