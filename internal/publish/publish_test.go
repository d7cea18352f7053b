package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	objects map[string]string
	types   map[string]string
	failKey string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if *in.Key == f.failKey {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string]string{}
		f.types = map[string]string{}
	}
	f.objects[*in.Bucket+"/"+*in.Key] = string(body)
	f.types[*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func writeFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	var out []string
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("content of "+n), 0o644); err != nil {
			t.Fatalf("write %s: %v", n, err)
		}
		out = append(out, p)
	}
	return out
}

func TestPublisher_Publish(t *testing.T) {
	fake := &fakeS3{}
	p := newPublisher(fake, Config{Bucket: "cop", Prefix: "/exports/"}, nil)

	files := writeFiles(t, "details.json", "seed_data.sql")
	keys, err := p.Publish(context.Background(), "run-1", files)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	want := []string{"exports/run-1/details.json", "exports/run-1/seed_data.sql"}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	if got := fake.objects["cop/exports/run-1/details.json"]; got != "content of details.json" {
		t.Errorf("unexpected object body %q", got)
	}
	if fake.types["exports/run-1/details.json"] != "application/json" {
		t.Errorf("unexpected content type %q", fake.types["exports/run-1/details.json"])
	}
	if fake.types["exports/run-1/seed_data.sql"] != "application/sql" {
		t.Errorf("unexpected content type %q", fake.types["exports/run-1/seed_data.sql"])
	}
}

func TestPublisher_KeyWithoutPrefix(t *testing.T) {
	p := newPublisher(&fakeS3{}, Config{Bucket: "cop"}, nil)
	if got := p.Key("abc", "run.json"); got != "abc/run.json" {
		t.Errorf("Key() = %q", got)
	}
}

func TestPublisher_StopsOnFailure(t *testing.T) {
	fake := &fakeS3{failKey: "r/a.json"}
	p := newPublisher(fake, Config{Bucket: "cop"}, nil)

	files := writeFiles(t, "a.json", "b.json")
	keys, err := p.Publish(context.Background(), "r", files)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(keys) != 0 || len(fake.objects) != 0 {
		t.Errorf("expected nothing published after first failure, got %v", keys)
	}
}

func TestPublisher_MissingFile(t *testing.T) {
	p := newPublisher(&fakeS3{}, Config{Bucket: "cop"}, nil)
	if _, err := p.Publish(context.Background(), "r", []string{filepath.Join(t.TempDir(), "nope.json")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNew_RequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); err == nil {
		t.Fatal("expected error without bucket")
	}
}
