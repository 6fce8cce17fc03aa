// Package server implements the broadcast backend HTTP API.
//
// The server accepts spreadsheet uploads, parses them into contact previews,
// and runs send jobs against the SMS provider while clients poll for progress.
//
// # Endpoints
//
//   - POST /upload        multipart spreadsheet -> parse job with preview
//   - GET  /preview/{id}  paged contact rows for a parse job
//   - POST /send          submit a send job for explicit targets or a whole parse job
//   - GET  /progress/{id} point-in-time snapshot of a send job
//
// Send jobs run on a background dispatcher paced by a rate limiter. Progress
// snapshots are safe to read while the job runs.
package server
