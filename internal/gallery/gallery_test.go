package gallery

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"gallery-builder/internal/config"
)

func testConfig(root string) *config.Config {
	return config.Default(root)
}

func mkdir(t *testing.T, root string, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create dir %s: %v", dir, err)
	}
	return dir
}

func touch(t *testing.T, dir string, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatalf("Failed to create file %s: %v", name, err)
	}
}

func TestSortKey(t *testing.T) {
	tests := []struct {
		name     string
		folder   string
		wantDate time.Time
	}{
		{
			name:     "valid date prefix",
			folder:   "20240102_trip",
			wantDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "date only",
			folder:   "20250630",
			wantDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "invalid month treated as undated",
			folder:   "20241301_bad",
			wantDate: undatedKey,
		},
		{
			name:     "invalid day treated as undated",
			folder:   "20240230_bad",
			wantDate: undatedKey,
		},
		{
			name:     "no digit prefix",
			folder:   "readme",
			wantDate: undatedKey,
		},
		{
			name:     "too few digits",
			folder:   "2024_trip",
			wantDate: undatedKey,
		},
		{
			name:     "digits interrupted",
			folder:   "2024010a_trip",
			wantDate: undatedKey,
		},
		{
			name:     "empty name",
			folder:   "",
			wantDate: undatedKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, name := SortKey(tt.folder)
			if !date.Equal(tt.wantDate) {
				t.Errorf("SortKey(%q) date = %v, want %v", tt.folder, date, tt.wantDate)
			}
			if name != tt.folder {
				t.Errorf("SortKey(%q) name = %q, want %q", tt.folder, name, tt.folder)
			}
		})
	}
}

func TestFindCoverImageExactMatch(t *testing.T) {
	root := t.TempDir()
	album := mkdir(t, root, "album")
	touch(t, album, "title.png")

	ix := New(testConfig(root))

	path, ok := ix.FindCoverImage(album)
	if !ok {
		t.Fatal("Expected cover image to be found")
	}
	if filepath.Base(path) != "title.png" {
		t.Errorf("Expected title.png, got %s", filepath.Base(path))
	}
}

func TestFindCoverImageExtensionPriority(t *testing.T) {
	root := t.TempDir()
	album := mkdir(t, root, "album")
	touch(t, album, "title.png")
	touch(t, album, "title.jpg")
	touch(t, album, "title.gif")

	ix := New(testConfig(root))

	// .jpg is listed before .png and .gif in the priority order
	path, ok := ix.FindCoverImage(album)
	if !ok {
		t.Fatal("Expected cover image to be found")
	}
	if filepath.Base(path) != "title.jpg" {
		t.Errorf("Expected title.jpg to win by extension priority, got %s", filepath.Base(path))
	}
}

func TestFindCoverImageCaseInsensitiveScan(t *testing.T) {
	root := t.TempDir()
	album := mkdir(t, root, "album")
	touch(t, album, "TITLE.PNG")

	ix := New(testConfig(root))

	path, ok := ix.FindCoverImage(album)
	if !ok {
		t.Fatal("Expected case-insensitive scan to find TITLE.PNG")
	}
	if filepath.Base(path) != "TITLE.PNG" {
		t.Errorf("Expected TITLE.PNG, got %s", filepath.Base(path))
	}
}

func TestFindCoverImageScanPrecedence(t *testing.T) {
	root := t.TempDir()
	album := mkdir(t, root, "album")
	// Neither matches exactly; extension priority decides, not listing order
	touch(t, album, "TITLE.GIF")
	touch(t, album, "Title.Jpeg")

	ix := New(testConfig(root))

	path, ok := ix.FindCoverImage(album)
	if !ok {
		t.Fatal("Expected cover image to be found")
	}
	if filepath.Base(path) != "Title.Jpeg" {
		t.Errorf("Expected Title.Jpeg (.jpeg outranks .gif), got %s", filepath.Base(path))
	}
}

func TestFindCoverImageMissing(t *testing.T) {
	root := t.TempDir()
	album := mkdir(t, root, "album")
	touch(t, album, "cover.jpg") // wrong stem
	touch(t, album, "title.txt") // wrong extension

	ix := New(testConfig(root))

	if _, ok := ix.FindCoverImage(album); ok {
		t.Error("Expected no cover image for folder without a title.<allowed-ext> file")
	}
}

func TestFindCoverImageIgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	album := mkdir(t, root, "album")
	mkdir(t, album, "title.jpg") // a directory, not a file

	ix := New(testConfig(root))

	if _, ok := ix.FindCoverImage(album); ok {
		t.Error("Expected directory named title.jpg to be ignored")
	}
}

func TestLinkTarget(t *testing.T) {
	root := t.TempDir()

	withIndex := mkdir(t, root, "with-index")
	touch(t, withIndex, IndexFileName)

	withoutIndex := mkdir(t, root, "without-index")

	ix := New(testConfig(root))

	path, isFolder := ix.LinkTarget(withIndex)
	if isFolder {
		t.Error("Expected isFolder=false when _index.html exists")
	}
	if filepath.Base(path) != IndexFileName {
		t.Errorf("Expected link to %s, got %s", IndexFileName, path)
	}

	path, isFolder = ix.LinkTarget(withoutIndex)
	if !isFolder {
		t.Error("Expected isFolder=true when _index.html is absent")
	}
	if path != withoutIndex {
		t.Errorf("Expected link to folder itself, got %s", path)
	}
}

func TestCollectEntries(t *testing.T) {
	root := t.TempDir()

	a := mkdir(t, root, "20250101_a")
	touch(t, a, "title.jpg")

	b := mkdir(t, root, "20250202_b")
	touch(t, b, "TITLE.PNG")

	drafts := mkdir(t, root, "_drafts")
	touch(t, drafts, "title.jpg")

	noCover := mkdir(t, root, "20250303_empty")
	touch(t, noCover, "notes.txt")

	ix := New(testConfig(root))

	entries, err := ix.CollectEntries()
	if err != nil {
		t.Fatalf("CollectEntries failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d: %+v", len(entries), entries)
	}

	// Descending date order: 20250202_b first
	if entries[0].Name != "20250202_b" {
		t.Errorf("Expected 20250202_b first, got %s", entries[0].Name)
	}
	if entries[0].Img != "20250202_b/TITLE.PNG" {
		t.Errorf("Expected case-insensitive cover 20250202_b/TITLE.PNG, got %s", entries[0].Img)
	}
	if entries[0].Href != "20250202_b/" {
		t.Errorf("Expected folder href with trailing slash, got %s", entries[0].Href)
	}

	if entries[1].Name != "20250101_a" {
		t.Errorf("Expected 20250101_a second, got %s", entries[1].Name)
	}
	if entries[1].Img != "20250101_a/title.jpg" {
		t.Errorf("Expected 20250101_a/title.jpg, got %s", entries[1].Img)
	}
}

func TestCollectEntriesIndexLink(t *testing.T) {
	root := t.TempDir()

	album := mkdir(t, root, "20240101_trip")
	touch(t, album, "title.jpg")
	touch(t, album, IndexFileName)

	ix := New(testConfig(root))

	entries, err := ix.CollectEntries()
	if err != nil {
		t.Fatalf("CollectEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Href != "20240101_trip/_index.html" {
		t.Errorf("Expected href to point at _index.html, got %s", entries[0].Href)
	}
}

func TestCollectEntriesUndatedLast(t *testing.T) {
	for _, desc := range []bool{true, false} {
		root := t.TempDir()

		for _, name := range []string{"20240102_trip", "20240101_trip", "readme", "20241301_bad"} {
			dir := mkdir(t, root, name)
			touch(t, dir, "title.jpg")
		}

		cfg := testConfig(root)
		cfg.SortDescending = desc

		entries, err := New(cfg).CollectEntries()
		if err != nil {
			t.Fatalf("CollectEntries failed: %v", err)
		}
		if len(entries) != 4 {
			t.Fatalf("Expected 4 entries, got %d", len(entries))
		}

		var names []string
		for _, e := range entries {
			names = append(names, e.Name)
		}

		var want []string
		if desc {
			want = []string{"20240102_trip", "20240101_trip", "20241301_bad", "readme"}
		} else {
			want = []string{"20240101_trip", "20240102_trip", "20241301_bad", "readme"}
		}

		if !reflect.DeepEqual(names, want) {
			t.Errorf("desc=%v: got order %v, want %v", desc, names, want)
		}
	}
}

func TestCollectEntriesIdempotent(t *testing.T) {
	root := t.TempDir()

	for _, name := range []string{"20240102_trip", "20240101_trip", "extras"} {
		dir := mkdir(t, root, name)
		touch(t, dir, "title.jpg")
	}

	ix := New(testConfig(root))

	first, err := ix.CollectEntries()
	if err != nil {
		t.Fatalf("First CollectEntries failed: %v", err)
	}
	second, err := ix.CollectEntries()
	if err != nil {
		t.Fatalf("Second CollectEntries failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results across runs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCollectEntriesRecursive(t *testing.T) {
	root := t.TempDir()

	top := mkdir(t, root, "20240101_top")
	touch(t, top, "title.jpg")

	nested := mkdir(t, root, filepath.Join("20240101_top", "20240102_nested"))
	touch(t, nested, "title.jpg")

	cfg := testConfig(root)
	cfg.OnlyImmediateChildren = false

	entries, err := New(cfg).CollectEntries()
	if err != nil {
		t.Fatalf("CollectEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries in recursive mode, got %d", len(entries))
	}
	if entries[0].Name != "20240102_nested" {
		t.Errorf("Expected nested album first (newer date), got %s", entries[0].Name)
	}
	if entries[0].Img != "20240101_top/20240102_nested/title.jpg" {
		t.Errorf("Expected nested relative path, got %s", entries[0].Img)
	}
}

func TestCollectEntriesCustomExcludePrefixes(t *testing.T) {
	root := t.TempDir()

	for _, name := range []string{"tmp_scratch", "20240101_keep"} {
		dir := mkdir(t, root, name)
		touch(t, dir, "title.jpg")
	}

	cfg := testConfig(root)
	cfg.ExcludePrefixes = []string{".", "_", "tmp"}

	entries, err := New(cfg).CollectEntries()
	if err != nil {
		t.Fatalf("CollectEntries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "20240101_keep" {
		t.Errorf("Expected only 20240101_keep, got %+v", entries)
	}
}

func TestCollectEntriesEmptyRoot(t *testing.T) {
	root := t.TempDir()

	entries, err := New(testConfig(root)).CollectEntries()
	if err != nil {
		t.Fatalf("CollectEntries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no entries for empty root, got %d", len(entries))
	}
}
