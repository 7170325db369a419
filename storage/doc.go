// Package storage provides object storage for interview artifacts such as
// answer recordings and final evaluation documents.
//
// Two backends are supported: the local filesystem for single-node
// deployments, and Amazon S3 (or any S3-compatible service such as MinIO)
// for durable archives.
//
//	store, err := storage.New(storage.Config{Backend: storage.BackendLocal}, log)
//	err = store.Put(ctx, "sessions/abc/turn-1.wav", f)
package storage
