package index

import (
	"context"

	"github.com/papercomputeco/upvector/pkg/vector"
	"github.com/papercomputeco/upvector/pkg/vector/payload"
)

// Info returns index-wide counters and configuration.
func (i *Index) Info(ctx context.Context) (vector.IndexInfo, error) {
	var info vector.IndexInfo
	if err := i.exec.Execute(ctx, payload.PathInfo, nil, &info); err != nil {
		return vector.IndexInfo{}, err
	}
	return info, nil
}

// Reset removes every record in ns.
func (i *Index) Reset(ctx context.Context, ns vector.Namespace) error {
	return i.exec.Execute(ctx, ns.Path(payload.PathReset), nil, nil)
}

// ResetAll removes every record in every namespace.
func (i *Index) ResetAll(ctx context.Context) error {
	return i.exec.Execute(ctx, payload.PathResetAll, nil, nil)
}

// ListNamespaces returns the names of all namespaces. The default namespace
// is reported as the empty string.
func (i *Index) ListNamespaces(ctx context.Context) ([]string, error) {
	var names []string
	if err := i.exec.Execute(ctx, payload.PathListNamespaces, nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// DeleteNamespace drops ns and all of its records. The default namespace
// cannot be deleted.
func (i *Index) DeleteNamespace(ctx context.Context, ns vector.Namespace) error {
	if ns.IsDefault() {
		return vector.ClientErrorf("the default namespace cannot be deleted")
	}
	return i.exec.Execute(ctx, ns.Path(payload.PathDeleteNamespace), nil, nil)
}
