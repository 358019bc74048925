// Package component defines lifecycle-managed parts of a streamcast
// service: broadcasts and the HTTP endpoint that serves them.
//
// Components are started in registration order and stopped in reverse, so
// the endpoint stops taking subscribers before the broadcast it reads from
// is closed.
package component
