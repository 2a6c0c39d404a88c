// Package internal provides the core types and implementation of the steer
// controller layer.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/steer" instead, which re-exports the public API.
//
// # Dispatch protocol
//
// One dispatch flows through a fixed sequence:
//
//	Controller.Run
//	  -> CreateAction            resolve id: handler table, action map, providers
//	  -> before hooks            last-registered observer's vote decides
//	  -> RunActionWithFilters    build FilterChain when filters are declared
//	       -> FilterChain.Run    filters in declaration order, cooperative
//	            -> RunAction     terminal action, param-binding guard
//	  -> after hooks             observe the action's buffered output
//
// The dispatch Context buffers everything the action writes; the transport
// adapter delivers the buffer exactly once after the controller returns.
// Failures unwind synchronously through the chain and Run; nothing in this
// package catches and retries.
//
// # Re-entrancy
//
// Controller.Forward dispatches again within the same call stack. The only
// shared mutable state is the controller's current action, saved and
// restored around every nested RunAction/RunActionWithFilters call. A
// controller instance serves one request at a time; it is not meant for
// concurrent reuse across goroutines.
package internal
