package request

import "testing"

func TestBuilderBuild(t *testing.T) {
	d := New("GET", "/albums/abc").
		Query("market", "US").
		Query("omit", "").
		Header("X-Custom", "1").
		Idempotent().
		Build()

	if d.Method != "GET" || d.Path != "/albums/abc" {
		t.Fatalf("unexpected method/path: %+v", d)
	}
	if !d.Idempotent {
		t.Fatal("expected idempotent")
	}
	if got := d.CanonicalQuery(); got != "market=US" {
		t.Fatalf("CanonicalQuery() = %q, want %q (empty values dropped)", got, "market=US")
	}
}

func TestDecodeGeneric(t *testing.T) {
	type album struct{ Name string }
	b := New("GET", "/albums/abc")
	Decode(b, func(data []byte) (album, error) { return album{Name: string(data)}, nil })
	d := b.Build()

	got, err := d.Decode([]byte("X"))
	if err != nil {
		t.Fatal(err)
	}
	a, ok := got.(album)
	if !ok || a.Name != "X" {
		t.Fatalf("unexpected decode result: %#v", got)
	}
}
