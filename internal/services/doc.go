// Package services defines the [Service] interface for the broadcast backend and its HTTP implementation.
//
// The backend exposes four endpoints consumed by the client:
//
//	POST /upload                 multipart spreadsheet upload, returns a preview job id
//	GET  /preview/{job_id}       parsed contact rows for a preview job
//	POST /send                   message + targets, returns a send job id
//	GET  /progress/{send_job_id} send-job status polled until terminal
//
// [BroadcastService] is the production implementation. [APIService] provides
// raw GET/POST access to the same backend for debugging from the CLI.
//
// Backend errors arrive as non-2xx responses with an {"error": "..."} body;
// decodeAPIError surfaces the server message verbatim, falling back to a
// generic label when the body is not decodable.
package services
