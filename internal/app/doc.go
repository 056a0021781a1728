// Package app is the application layer, the only component that references
// multiple domain components. It orchestrates all use cases and owns the
// routing of authorization rejections into the session core.
package app
