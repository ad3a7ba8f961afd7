package site

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"gallery-builder/internal/config"
	"gallery-builder/internal/logging"
)

// NoJekyllFileName is the zero-byte marker that tells GitHub Pages style
// hosts not to filter underscore-prefixed paths like _index.html.
const NoJekyllFileName = ".nojekyll"

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.PageTitle}}</title>
<style>
  body{margin:0;background:#101012;color:#eee;font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto}
  header{padding:16px 12px;border-bottom:1px solid #26262b;position:sticky;top:0;background:#101012cc;backdrop-filter:blur(6px)}
  h1{margin:0;font-size:18px}
  .muted{color:#a1a1aa;font-size:12px}
  .grid{display:grid;gap:14px;padding:16px;grid-template-columns:repeat(auto-fit,minmax(220px,1fr));max-width:1200px;margin:0 auto}
  .card{display:block;background:#19191e;border:1px solid #26262b;border-radius:14px;overflow:hidden;text-decoration:none;color:inherit}
  .card img{display:block;width:100%;aspect-ratio:16/9;object-fit:cover;background:#0f0f12}
  .card span{display:block;padding:10px 12px;font-size:14px;border-top:1px solid #26262b;white-space:nowrap;overflow:hidden;text-overflow:ellipsis}
</style>
</head>
<body>
<header>
  <h1>{{.SiteHeader}}</h1>
  <div class="muted">{{.SiteSubtitle}}</div>
</header>

<main class="grid" id="grid"></main>

<script>
(async () => {
  const grid = document.getElementById('grid');
  const url = new URL('./{{.ManifestName}}', location.href);
  url.searchParams.set('v', Date.now());
  let items = [];
  try {
    const r = await fetch(url.toString(), { cache: 'no-store' });
    if (!r.ok) throw new Error('HTTP ' + r.status);
    items = await r.json();
  } catch (err) {
    grid.innerHTML = '<p style="color:#f88">Failed to load gallery data: ' + (err && err.message || err) + '</p>';
    return;
  }
  if (!Array.isArray(items) || items.length === 0) {
    grid.innerHTML = '<p class="muted">Nothing to show yet. Add a folder with a title image.</p>';
    return;
  }
  grid.innerHTML = '';
  for (const it of items) {
    const a = document.createElement('a');
    a.className = 'card';
    a.href = it.href;
    const img = document.createElement('img');
    img.src = it.thumb || it.img;
    img.alt = it.name;
    img.loading = 'lazy';
    const span = document.createElement('span');
    span.textContent = it.name;
    a.appendChild(img);
    a.appendChild(span);
    grid.appendChild(a);
  }
})();
</script>
</body>
</html>
`))

// pageData carries the template values for the gallery page.
type pageData struct {
	PageTitle    string
	SiteHeader   string
	SiteSubtitle string
	ManifestName string
}

// RenderPage renders the static gallery page for the given configuration.
// The page fetches the manifest client-side, so it only needs to be
// regenerated when the configuration changes, not when entries do.
func RenderPage(cfg *config.Config) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		PageTitle:    cfg.PageTitle,
		SiteHeader:   cfg.SiteHeader,
		SiteSubtitle: cfg.SiteSubtitle,
		ManifestName: cfg.OutputJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render gallery page: %w", err)
	}
	return buf.Bytes(), nil
}

// WritePage renders and writes the gallery page into the root directory.
func WritePage(cfg *config.Config) error {
	data, err := RenderPage(cfg)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.Root, cfg.OutputHTML)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write gallery page %s: %w", path, err)
	}
	return nil
}

// EnsureNoJekyll creates the zero-byte .nojekyll marker at the root if it
// does not already exist.
func EnsureNoJekyll(root string) error {
	path := filepath.Join(root, NoJekyllFileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return fmt.Errorf("failed to create %s: %w", NoJekyllFileName, err)
	}
	logging.Debug("Created %s marker", NoJekyllFileName)
	return nil
}
