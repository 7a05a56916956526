package argos

import (
	"github.com/dmitrymomot/argos/internal"
	"github.com/dmitrymomot/argos/pkg/logger"
)

// Type aliases - public API
type (
	// Request is the mutable per-request value passed through filters to
	// the route handler.
	Request = internal.Request

	// RouteHandler produces a success value or an error for a request.
	RouteHandler = internal.RouteHandler

	// FilterHandler inspects a request and decides to continue or reject.
	FilterHandler = internal.FilterHandler

	// Decision is the outcome of a filter: Continue or Reject.
	Decision = internal.Decision

	// TypedError is an error that carries its own status, body and headers.
	TypedError = internal.TypedError

	// PanicError wraps a value recovered from a panicking handler.
	PanicError = internal.PanicError

	// Predicate selects the requests a filter applies to.
	Predicate = internal.Predicate

	// Registry holds routes and filters during startup.
	Registry = internal.Registry

	// Table is the frozen, read-only view of a Registry.
	Table = internal.Table

	// RouteEntry is a registered route.
	RouteEntry = internal.RouteEntry

	// FilterEntry is a registered filter.
	FilterEntry = internal.FilterEntry

	// FilterOption configures a filter registration.
	FilterOption = internal.FilterOption

	// Mode is a route's rendering mode: json, text or html.
	Mode = internal.Mode

	// Protocol is the HTTP version a server speaks.
	Protocol = internal.Protocol

	// Server accepts connections and dispatches their requests.
	Server = internal.Server

	// Option configures a Server.
	Option = internal.Option

	// Config is the YAML form of the server options.
	Config = internal.Config

	// TLSConfig is the tls section of Config.
	TLSConfig = internal.TLSConfig

	// Dispatcher drives requests through filters, routes and formatting.
	Dispatcher = internal.Dispatcher

	// Response is a fully rendered response.
	Response = internal.Response

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// Error is a TypedError with a body of type B.
type Error[B any] = internal.Error[B]

// Rendering modes.
const (
	ModeJSON = internal.ModeJSON
	ModeText = internal.ModeText
	ModeHTML = internal.ModeHTML
)

// Protocols.
const (
	ProtocolHTTP1 = internal.ProtocolHTTP1
	ProtocolHTTP2 = internal.ProtocolHTTP2
)

// Sentinel errors.
var (
	ErrRegistryFrozen   = internal.ErrRegistryFrozen
	ErrInvalidMethod    = internal.ErrInvalidMethod
	ErrInvalidOrder     = internal.ErrInvalidOrder
	ErrInvalidPredicate = internal.ErrInvalidPredicate
	ErrNilHandler       = internal.ErrNilHandler
	ErrUnknownMode      = internal.ErrUnknownMode
	ErrSerialization    = internal.ErrSerialization
	ErrUnknownProtocol  = internal.ErrUnknownProtocol
	ErrServerRunning    = internal.ErrServerRunning
	ErrInvalidConfig    = internal.ErrInvalidConfig
)

// Constructors and helpers.
var (
	NewRegistry     = internal.NewRegistry
	DefaultRegistry = internal.DefaultRegistry
	NewServer       = internal.NewServer
	Run             = internal.Run
	LoadConfig      = internal.LoadConfig
	ParseMode       = internal.ParseMode
	ParseProtocol   = internal.ParseProtocol

	Continue = internal.Continue
	Reject   = internal.Reject

	ParsePredicate = internal.ParsePredicate
	PathPattern    = internal.PathPattern
	Method         = internal.Method
	Host           = internal.Host
	All            = internal.All

	WithFilterName = internal.WithFilterName
	WithBlocking   = internal.WithBlocking

	AsTypedError = internal.AsTypedError
	AsPanicError = internal.AsPanicError

	ErrBadRequest         = internal.ErrBadRequest
	ErrUnauthorized       = internal.ErrUnauthorized
	ErrForbidden          = internal.ErrForbidden
	ErrNotFound           = internal.ErrNotFound
	ErrTooManyRequests    = internal.ErrTooManyRequests
	ErrInternal           = internal.ErrInternal
	ErrServiceUnavailable = internal.ErrServiceUnavailable

	RouteExtractor = internal.RouteExtractor
)

// Server options.
var (
	WithAddress           = internal.WithAddress
	WithProtocol          = internal.WithProtocol
	WithTLS               = internal.WithTLS
	WithTLSReload         = internal.WithTLSReload
	WithLogger            = internal.WithLogger
	WithRegistry          = internal.WithRegistry
	WithReadTimeout       = internal.WithReadTimeout
	WithReadHeaderTimeout = internal.WithReadHeaderTimeout
	WithWriteTimeout      = internal.WithWriteTimeout
	WithIdleTimeout       = internal.WithIdleTimeout
	WithHandshakeTimeout  = internal.WithHandshakeTimeout
	WithShutdownTimeout   = internal.WithShutdownTimeout
	WithShutdownHook      = internal.WithShutdownHook
	WithHealthChecks      = internal.WithHealthChecks
	WithMetrics           = internal.WithMetrics
	WithBlockingPoolSize  = internal.WithBlockingPoolSize
	WithHTMLPolicy        = internal.WithHTMLPolicy
)

// NewError creates an Error with the given status code and body.
func NewError[B any](code int, body B) *Error[B] {
	return internal.NewError(code, body)
}

// Handle adapts a typed handler function to a RouteHandler.
func Handle[T any](fn func(r *Request) (T, error)) RouteHandler {
	return internal.Handle(fn)
}
