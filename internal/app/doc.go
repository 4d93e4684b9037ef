// Package app is the application layer: device registration and the session
// admission decisions. It is the only package that references multiple
// domain components.
package app
