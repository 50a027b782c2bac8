// Package rpcvalue models the dynamically typed values carried by Neovim
// msgpack-RPC notifications.
//
// The RPC codec hands back plain Go values (nil, bools, 64-bit integers,
// floats, strings, byte slices, slices and maps). FromAny folds those into a
// closed set of kinds so the dispatcher can carry arguments opaquely and the
// collaborators that do interpret them get checked accessors instead of type
// switches scattered across packages.
package rpcvalue
