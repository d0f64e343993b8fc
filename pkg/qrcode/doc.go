// Package qrcode renders strings, typically upload handoff URLs, as QR code
// images: either raw PNG bytes or a base64 data URI for direct embedding in a
// page.
//
// It is a thin wrapper around github.com/skip2/go-qrcode adding input
// validation and a default size. The output is a pure function of the input
// string; no state rides along with the image.
//
// Errors are package-level sentinels comparable with errors.Is.
package qrcode
