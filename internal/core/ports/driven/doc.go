// Package driven defines the interfaces the core depends on: the three
// platform clients, the credential relay, and the token and config
// stores. Adapters implement these; the core never talks to a platform
// directly.
package driven
