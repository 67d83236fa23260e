package document

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the SHA-256 content hash of the document's wire form,
// computed once when the document was decoded. Two documents with identical
// wire bytes have identical fingerprints, so consumers can detect an
// unchanged document without re-serializing it.
func (d *Document) Fingerprint() string {
	return d.fingerprint
}

// Same reports whether other has the same content fingerprint as d.
// Either side may be nil; two nils compare equal.
func (d *Document) Same(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.fingerprint != "" && d.fingerprint == other.fingerprint
}

func hashContent(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
