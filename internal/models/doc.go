// Package models defines domain entities and persistence interfaces for the blastr bulk-messaging client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs exchanged with the broadcast backend
//   - [Contact] : One parsed spreadsheet row (stable id, fullname, phone)
//   - [SendRequest] : Message plus resolved target list submitted to /send
//   - [Progress] : Send-job status polled from /progress
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Campaign] : A completed (or failed) send job recorded for history
//
// Persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
