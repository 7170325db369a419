// Package encryption provides authenticated encryption for archived
// interview documents. Transcripts and evaluation results carry candidate
// PII, so archives written to shared storage can be sealed at rest.
//
// Keys are derived from a passphrase with SHA-256. The default cipher is
// AES-256-GCM; ChaCha20-Poly1305 is available for hosts without AES
// hardware support.
//
//	c, err := encryption.New(cfg.Key)
//	sealed, err := c.Seal(document)
//	document, err = c.Open(sealed)
package encryption
