// Package config loads and validates the gallery builder configuration.
//
// All behavior is driven by an explicit Config struct rather than package
// globals, so tests can run the indexer with varied settings. Defaults match
// the zero-configuration case (scan the working directory, "title" covers,
// newest album first); every setting can be overridden through environment
// variables:
//
//	GALLERY_ROOT       root directory to index (default: working directory)
//	IMAGE_BASENAME     cover image stem (default: "title")
//	IMAGE_EXTENSIONS   comma-separated extension priority list
//	EXCLUDE_PREFIXES   comma-separated folder name prefixes to skip
//	SORT_DESC          newest-first ordering (default: true)
//	OUTPUT_JSON        manifest file name (default: "data.json")
//	OUTPUT_HTML        gallery page file name (default: "index.html")
//	CREATE_NOJEKYLL    write a .nojekyll marker (default: true)
//	AUTO_OPEN          open the page in a browser after building
//	THUMBNAILS_ENABLED generate downscaled card thumbnails
//	CACHE_DIR          thumbnail cache location (default: <root>/.gallery-cache)
//	PORT               preview server port (default: 8080)
//	METRICS_ENABLED    expose Prometheus metrics in serve mode
package config
