// Package inkhub re-exports the admin service for hosts embedding the panel.
package inkhub

import (
	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/datatable"
)

// Service exposes the underlying components/admin.Service type.
type Service = admin.Service

// Options re-export for convenience.
type Options = admin.Options

// Resource describes one tab of the panel.
type Resource = admin.Resource

// Registry holds resource descriptors.
type Registry = admin.Registry

// Source supplies working sets.
type Source = admin.Source

// Entity is one record of a resource.
type Entity = datatable.Entity

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return admin.NewService(opts)
}
