// Package tasks orchestrates the upload → preview → select → send → poll
// campaign workflow with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines three operations:
//
//  1. [Engine.Upload] : Submit a spreadsheet and load its parsed preview
//     - Uploads the file as multipart form data
//     - Fetches the parsed contact rows for the returned job id
//     - Replaces any prior [Session] (preview rows and selection)
//
//  2. [Engine.Send] : Submit a send job and watch it to completion
//     - Validates the message locally before any network call
//     - Resolves targets from the session (selected subset or all rows)
//     - Applies the empty-selection confirmation policy
//     - Starts a [Poller] for the returned send job id
//
//  3. [Engine.Poll] : Poll an existing send job until terminal
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced UI rendering. Updates use select with default to
// prevent blocking.
//
// # Campaign History
//
// The optional [CampaignRecorder] interface persists finished send jobs.
// Recording failures are logged by callers, never fatal to a send.
//
// # Polling State Machine
//
// [Poller] owns the polling loop: states {polling, done}, one status request
// per fixed interval, a single authoritative transition function, and
// idempotent cancellation even under duplicate terminal responses.
package tasks
