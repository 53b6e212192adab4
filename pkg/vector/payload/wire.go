package payload

import (
	"github.com/papercomputeco/upvector/pkg/vector"
)

// Endpoint paths. Namespaced endpoints take a "/<namespace>" suffix through
// vector.Namespace.Path.
const (
	PathUpsert             = "/upsert"
	PathUpsertData         = "/upsert-data"
	PathQuery              = "/query"
	PathQueryData          = "/query-data"
	PathResumableQuery     = "/resumable-query"
	PathResumableQueryData = "/resumable-query-data"
	PathResumableQueryNext = "/resumable-query-next"
	PathResumableQueryEnd  = "/resumable-query-end"
	PathFetch              = "/fetch"
	PathDelete             = "/delete"
	PathRange              = "/range"
	PathUpdate             = "/update"
	PathInfo               = "/info"
	PathReset              = "/reset"
	PathResetAll           = "/reset?all"
	PathListNamespaces     = "/list-namespaces"
	PathDeleteNamespace    = "/delete-namespace"
)

// ResumableStartResult is the result of starting a resumable query.
type ResumableStartResult struct {
	UUID   string               `json:"uuid"`
	Scores []vector.QueryResult `json:"scores"`
}

// ResumableNextPayload asks a session for more results.
type ResumableNextPayload struct {
	UUID        string `json:"uuid"`
	AdditionalK int    `json:"additionalK"`
}

// ResumableEndPayload releases a session.
type ResumableEndPayload struct {
	UUID string `json:"uuid"`
}

// FetchPayload looks records up by id or by id prefix.
type FetchPayload struct {
	IDs             []vector.ID `json:"ids,omitempty"`
	Prefix          string      `json:"prefix,omitempty"`
	IncludeVectors  bool        `json:"includeVectors"`
	IncludeMetadata bool        `json:"includeMetadata"`
	IncludeData     bool        `json:"includeData"`
}

// DeletePayload removes records by id, id prefix or metadata filter.
type DeletePayload struct {
	IDs    []vector.ID `json:"ids,omitempty"`
	Prefix string      `json:"prefix,omitempty"`
	Filter string      `json:"filter,omitempty"`
}

// DeleteResult reports how many records were removed.
type DeleteResult struct {
	Deleted int `json:"deleted"`
}

// RangePayload requests one page of a cursor scan.
type RangePayload struct {
	Cursor          string `json:"cursor"`
	Limit           int    `json:"limit"`
	Prefix          string `json:"prefix,omitempty"`
	IncludeVectors  bool   `json:"includeVectors"`
	IncludeMetadata bool   `json:"includeMetadata"`
	IncludeData     bool   `json:"includeData"`
}

// MetadataUpdateMode selects how Update treats existing metadata.
type MetadataUpdateMode string

const (
	// MetadataOverwrite replaces the stored metadata.
	MetadataOverwrite MetadataUpdateMode = "OVERWRITE"

	// MetadataPatch merges into the stored metadata following JSON merge
	// patch rules: a null value deletes the key.
	MetadataPatch MetadataUpdateMode = "PATCH"
)

// UpdatePayload changes parts of a single stored record.
type UpdatePayload struct {
	ID                 vector.ID            `json:"id"`
	Vector             vector.DenseVector   `json:"vector,omitempty"`
	SparseVector       *vector.SparseVector `json:"sparseVector,omitempty"`
	Data               *string              `json:"data,omitempty"`
	Metadata           vector.Metadata      `json:"metadata,omitempty"`
	MetadataUpdateMode MetadataUpdateMode   `json:"metadataUpdateMode,omitempty"`
}

// UpdateResult reports whether a record was changed.
type UpdateResult struct {
	Updated int `json:"updated"`
}
