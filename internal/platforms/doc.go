// Package platforms contains the HTTP clients for the three external
// platforms. Each subpackage implements the corresponding driven port
// and maps the platform's wire format and error codes onto domain
// types. The core never imports these packages; they are injected at
// the composition root.
package platforms
