package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gallery-builder/internal/gallery"
)

const dateLayout = "20060102"

var indexStub = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>%s</title>
</head>
<body>
  <h1>%s</h1>
  <p>Album page for %s.</p>
</body>
</html>
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	date := time.Now().Format(dateLayout)
	if len(os.Args) > 2 {
		date = os.Args[2]
	}

	root := os.Getenv("GALLERY_ROOT")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to determine working directory: %v\n", err)
			os.Exit(1)
		}
		root = wd
	}

	dir, err := scaffold(root, name, date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", dir)
	fmt.Println("Add photos and a title image (title.jpg/.jpeg/.png/.webp/.gif), then rebuild.")
}

// scaffold creates the dated album folder and its _index.html stub, and
// returns the folder path.
func scaffold(root, name, date string) (string, error) {
	folder, err := folderName(name, date)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(root, folder)
	if _, err := os.Stat(dir); err == nil {
		return "", fmt.Errorf("album folder %s already exists", folder)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create album folder: %w", err)
	}

	page := fmt.Sprintf(indexStub, name, name, name)
	indexPath := filepath.Join(dir, gallery.IndexFileName)
	if err := os.WriteFile(indexPath, []byte(page), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", gallery.IndexFileName, err)
	}

	return dir, nil
}

// folderName validates the date and slugifies the album name into the
// YYYYMMDD_name form the gallery scanner sorts on.
func folderName(name, date string) (string, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYYMMDD): %w", date, err)
	}

	slug := slugify(name)
	if slug == "" {
		return "", fmt.Errorf("album name %q has no usable characters", name)
	}

	return date + "_" + slug, nil
}

// slugify lowercases the name and replaces anything that is not a letter,
// digit, or hyphen with underscores, collapsing runs.
func slugify(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: newalbum <name> [date]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Creates a YYYYMMDD_name album folder with an _index.html stub.")
	fmt.Fprintln(os.Stderr, "The date defaults to today. Set GALLERY_ROOT to choose the root.")
}
