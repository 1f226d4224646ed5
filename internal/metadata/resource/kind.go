// Package resource defines the immutable metadata model produced by the resolution
// chain: operations, parameters, links and the per-class resource collection.
package resource

import (
	"fmt"
	"net/http"
)

// OperationKind identifies the shape of an operation (HTTP verb semantics or GraphQL kind)
type OperationKind int

const (
	KindGet OperationKind = iota
	KindGetCollection
	KindPost
	KindPut
	KindPatch
	KindDelete

	// GraphQL kinds
	KindQuery
	KindQueryCollection
	KindMutation
	KindDeleteMutation
	KindSubscription
)

// String returns the default operation name for the kind
func (k OperationKind) String() string {
	switch k {
	case KindGet:
		return "get"
	case KindGetCollection:
		return "get_collection"
	case KindPost:
		return "post"
	case KindPut:
		return "put"
	case KindPatch:
		return "patch"
	case KindDelete:
		return "delete"
	case KindQuery:
		return "item_query"
	case KindQueryCollection:
		return "collection_query"
	case KindMutation:
		return "mutation"
	case KindDeleteMutation:
		return "delete_mutation"
	case KindSubscription:
		return "subscription"
	default:
		return "unknown"
	}
}

// ParseOperationKind converts a declared operation type to an OperationKind.
// Both the short names ("Get", "GetCollection") and the default operation names
// ("get", "get_collection") are accepted.
func ParseOperationKind(s string) (OperationKind, error) {
	switch s {
	case "Get", "get":
		return KindGet, nil
	case "GetCollection", "get_collection":
		return KindGetCollection, nil
	case "Post", "post":
		return KindPost, nil
	case "Put", "put":
		return KindPut, nil
	case "Patch", "patch":
		return KindPatch, nil
	case "Delete", "delete":
		return KindDelete, nil
	case "Query", "item_query":
		return KindQuery, nil
	case "QueryCollection", "collection_query":
		return KindQueryCollection, nil
	case "Mutation", "mutation":
		return KindMutation, nil
	case "DeleteMutation", "delete_mutation":
		return KindDeleteMutation, nil
	case "Subscription", "subscription":
		return KindSubscription, nil
	default:
		return 0, fmt.Errorf("unknown operation type: %s", s)
	}
}

// IsCollection reports whether the operation reads a list of items
func (k OperationKind) IsCollection() bool {
	return k == KindGetCollection || k == KindQueryCollection
}

// IsDelete reports whether the operation removes an item
func (k OperationKind) IsDelete() bool {
	return k == KindDelete || k == KindDeleteMutation
}

// IsUpdate reports whether the operation replaces or patches an existing item over HTTP
func (k OperationKind) IsUpdate() bool {
	return k == KindPut || k == KindPatch
}

// IsGraphQL reports whether the kind belongs to the GraphQL operation set
func (k OperationKind) IsGraphQL() bool {
	return k >= KindQuery
}

// IsItem reports whether the operation addresses a single item through uri variables
func (k OperationKind) IsItem() bool {
	switch k {
	case KindGet, KindPut, KindPatch, KindDelete:
		return true
	}
	return false
}

// DefaultMethod returns the HTTP method (or GraphQL kind label) used when none is declared
func (k OperationKind) DefaultMethod() string {
	switch k {
	case KindGet, KindGetCollection:
		return http.MethodGet
	case KindPost:
		return http.MethodPost
	case KindPut:
		return http.MethodPut
	case KindPatch:
		return http.MethodPatch
	case KindDelete:
		return http.MethodDelete
	case KindQuery, KindQueryCollection:
		return "QUERY"
	case KindSubscription:
		return "SUBSCRIPTION"
	default:
		return "MUTATION"
	}
}
