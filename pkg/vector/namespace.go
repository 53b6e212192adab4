package vector

import (
	"net/url"
)

// Namespace selects a logical partition of an index. The zero value is the
// unnamed default namespace.
type Namespace struct {
	name  string
	named bool
}

// DefaultNamespace is the unnamed partition every index has.
var DefaultNamespace = Namespace{}

// NamedNamespace returns the namespace called name. An empty name yields the
// default namespace, matching how the service reports it.
func NamedNamespace(name string) Namespace {
	if name == "" {
		return DefaultNamespace
	}
	return Namespace{name: name, named: true}
}

// IsDefault reports whether ns is the default namespace.
func (ns Namespace) IsDefault() bool {
	return !ns.named
}

// Name returns the namespace name, empty for the default namespace.
func (ns Namespace) Name() string {
	return ns.name
}

// Path appends the namespace segment to an endpoint path.
func (ns Namespace) Path(endpoint string) string {
	if !ns.named {
		return endpoint
	}
	return endpoint + "/" + url.PathEscape(ns.name)
}

// String implements fmt.Stringer.
func (ns Namespace) String() string {
	if !ns.named {
		return "(default)"
	}
	return ns.name
}
