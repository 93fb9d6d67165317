// Package deps resolves the external binaries stackreel shells out to and
// reports whether each is installed and runnable.
package deps
