// Package capability decides whether a candidate object can play a
// named role. The check is structural: each role is a documented set of
// required members, probed through interface assertions, never through
// a declared base type. Heterogeneous implementations (in-memory map,
// remote store, hybrid) can therefore share a role without sharing an
// ancestor.
//
// The accepted trade-off is that an unrelated object exposing the same
// member names will pass; the registry relies on the role members alone,
// so a shape-compatible impostor can at worst misbehave, not crash the
// core.
//
// Members that come in a plain and a context-taking form (create,
// delete, retrieve) satisfy their requirement in either form. The
// before/after hooks of the download and upload roles are mandatory;
// the permissiveness around them in earlier designs was a defect, not a
// feature.
package capability

import (
	"context"

	"github.com/vk/actionhub/internal/action"
	"github.com/vk/actionhub/internal/behavior"
)

// Role names a member set a candidate can be checked against.
type Role string

const (
	RoleAction      Role = "action"
	RoleAsyncAction Role = "async_action"
	RoleRegistry    Role = "registry"
	RoleLinkParser  Role = "link_parser"
	RoleDownload    Role = "download"
	RoleUpload      Role = "upload"
)

// Member fragments. Each interface is one required member (or one
// alternative of an OR-group); roles are conjunctions over them.

// Invoker is the synchronous invocation entry point.
type Invoker interface {
	Invoke(ctx context.Context, call behavior.Call) (any, error)
}

// AsyncInvoker is the asynchronous invocation entry point.
type AsyncInvoker interface {
	InvokeAsync(ctx context.Context, call behavior.Call) *action.Handle
}

// BehaviorAccessor is the behavior marker both action roles require.
type BehaviorAccessor interface {
	Behavior() behavior.Func
}

// Creator and ContextCreator are the two accepted shapes of the
// registry creation entry point.
type Creator interface {
	Create(key string, act any) error
}

// ContextCreator is the context-taking alternative, the shape a remote
// or I/O-backed store exposes.
type ContextCreator interface {
	Create(ctx context.Context, key string, act any) error
}

// Deleter / ContextDeleter: the deletion entry point.
type Deleter interface {
	Delete(key string) error
}

type ContextDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Retriever / ContextRetriever: the retrieval entry point.
type Retriever interface {
	Retrieve(key string) (any, error)
}

type ContextRetriever interface {
	Retrieve(ctx context.Context, key string) (any, error)
}

// ItemGetter and ItemSetter are the raw item-level accessors.
type ItemGetter interface {
	Get(key string) (any, bool)
}

type ItemSetter interface {
	Set(key string, act any) error
}

// KeystoreMarker identifies a candidate as a keyed store.
type KeystoreMarker interface {
	Keystore()
}

// Opener / Closer cover session management for the transfer and
// link-parser roles, in plain or context-taking form.
type Opener interface {
	Open() error
}

type ContextOpener interface {
	Open(ctx context.Context) error
}

type Closer interface {
	Close() error
}

type ContextCloser interface {
	Close(ctx context.Context) error
}

// URIGenerator / URIDecoder are the link-parser entry points.
type URIGenerator interface {
	GenerateURI(data behavior.Fields, secret string) (string, error)
}

type URIDecoder interface {
	DecodeURI(uri string, secret string) (behavior.Fields, error)
}

// Transfer hooks.
type DownloadHooks interface {
	BeforeDownload(ctx context.Context) error
	AfterDownload(ctx context.Context) error
}

type UploadHooks interface {
	BeforeUpload(ctx context.Context) error
	AfterUpload(ctx context.Context) error
}

// Satisfies reports whether candidate exposes every member the role
// requires. It never panics, retains no reference to candidate, and
// returns false for nil candidates and unknown roles.
func Satisfies(candidate any, role Role) bool {
	if candidate == nil {
		return false
	}
	switch role {
	case RoleAction:
		return is[Invoker](candidate) && is[BehaviorAccessor](candidate)
	case RoleAsyncAction:
		return is[AsyncInvoker](candidate) && is[BehaviorAccessor](candidate)
	case RoleRegistry:
		return (is[Creator](candidate) || is[ContextCreator](candidate)) &&
			(is[Deleter](candidate) || is[ContextDeleter](candidate)) &&
			(is[Retriever](candidate) || is[ContextRetriever](candidate)) &&
			is[ItemGetter](candidate) &&
			is[ItemSetter](candidate) &&
			is[KeystoreMarker](candidate)
	case RoleLinkParser:
		return (is[Opener](candidate) || is[ContextOpener](candidate)) &&
			(is[Closer](candidate) || is[ContextCloser](candidate)) &&
			is[URIGenerator](candidate) &&
			is[URIDecoder](candidate)
	case RoleDownload:
		return (is[Closer](candidate) || is[ContextCloser](candidate)) &&
			is[DownloadHooks](candidate)
	case RoleUpload:
		return (is[Closer](candidate) || is[ContextCloser](candidate)) &&
			is[UploadHooks](candidate)
	default:
		return false
	}
}

// is probes a single member set.
func is[T any](candidate any) bool {
	_, ok := candidate.(T)
	return ok
}
