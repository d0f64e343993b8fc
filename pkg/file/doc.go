// Package file stores image artifacts: normalized uploads, generated outputs
// and mobile handoff deposits.
//
// Storage is a small byte-stream interface with two implementations: local
// filesystem for development and single-node deployments, and S3 (or any
// S3-compatible service) for production. Artifact references returned by Put
// are storage-relative paths, safe to persist and to feed back into Get.
//
// All paths are confined to the configured root; traversal attempts fail with
// ErrInvalidPath.
package file
