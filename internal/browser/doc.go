// Package browser opens files and URLs in the user's default browser.
// Opening is best effort: a missing or failing opener never fails the
// caller, it is logged and ignored.
package browser
