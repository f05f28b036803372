//go:build !unix

// Dynamic loading of libaom is only wired up for unix-like targets;
// elsewhere the package compiles to nothing and the backend is absent.
package aomdec
