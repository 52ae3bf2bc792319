// Package service ties the change pipeline together behind one API
// used by both the HTTP server and the CLI: validate fragments, queue
// accepted changes, list and withdraw them, and read the committed
// configuration. Everything asynchronous lives in pkg/worker; the
// service itself only ever touches the provider for reads.
package service
