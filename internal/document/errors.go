// Package document converts canvases to and from a JSON document model
// suitable for storage and for syncing clients.
package document

import "errors"

// ErrInvalid is returned for documents that cannot be decoded or do not
// describe a valid canvas.
var ErrInvalid = errors.New("invalid document")
