package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func openTemp(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "nested", "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRecordAndGet(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	in := &Entry{
		Seed:         42,
		Settings:     []byte(`{"seed":42}`),
		Points:       100,
		Sites:        181,
		Rivers:       7,
		LandFraction: 0.51,
		SeaLevel:     0.25,
		MeshPath:     "/tmp/42.mesh",
	}

	id, err := c.Record(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	if got.ID != id || in.ID != id {
		t.Errorf("expected id %d got %d (%d)", id, got.ID, in.ID)
	}
	if got.Seed != 42 || got.Sites != 181 || got.Rivers != 7 || got.LandFraction != 0.51 || got.SeaLevel != 0.25 {
		t.Errorf("row mismatch %+v", got)
	}
	if string(got.Settings) != `{"seed":42}` || got.Digest != Digest(in.Settings) {
		t.Errorf("settings mismatch %q %s", got.Settings, got.Digest)
	}
	if got.MeshPath != "/tmp/42.mesh" || got.ImagePath != "" {
		t.Errorf("paths mismatch %+v", got)
	}
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("expected created %v got %v", in.CreatedAt, got.CreatedAt)
	}
}

func TestGetMissing(t *testing.T) {
	c := openTemp(t)

	_, err := c.Get(context.Background(), 99)

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound got %v", err)
	}
}

func TestListAndBySettings(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	a := []byte(`{"seed":1}`)
	b := []byte(`{"seed":2}`)

	for _, s := range [][]byte{a, b, a} {
		if _, err := c.Record(ctx, &Entry{Settings: s}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := c.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID < all[2].ID {
		t.Errorf("expected 3 entries newest first got %d", len(all))
	}

	two, err := c.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(two) != 2 {
		t.Errorf("expected 2 entries got %d", len(two))
	}

	same, err := c.BySettings(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if len(same) != 2 || same[0].ID > same[1].ID {
		t.Errorf("expected 2 matching entries oldest first got %v", same)
	}
}

func TestCloseTwice(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("expected second close to be a no-op got %v", err)
	}
}
