// Package plugin moves custom values across the boundary between the shell
// and the external plugins that define them.
//
// A Registry maps type tags to Capabilities. Values leave the process as an
// Envelope (or a whole Wire tree with envelopes nested inside) and come back
// through Decode. Every envelope carries a plain fallback, so a host that
// lacks the plugin can still show the data.
//
// A Boundary binds a registry to one plugin identity and enforces the
// hello handshake and the rule that custom values only return to the plugin
// that produced them.
package plugin
