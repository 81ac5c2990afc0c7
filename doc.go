// Package memberguard is the backend of a Wix app that protects site member
// lists.
//
// The server binary lives in cmd/server and the operator CLI in
// cmd/memberguard-cli. The code is organized into subpackages:
//
// - internal/guard: webhook pipelines for new members and inbox messages
// - internal/avatars: bulk Gravatar backfill for existing members
// - internal/wix: Wix REST client, webhook verification and test doubles
// - internal/emailcheck: disposable email lookups with a Redis verdict cache
// - internal/moderation: keyword and API based message screening
// - internal/alerts: fake member alert delivery (SendPulse, SES)
// - internal/toggles: per-instance feature switches stored in Redis
// - internal/handlers: HTTP request handlers for the dashboard API
// - internal/middleware: request IDs, logging, metrics, rate limiting
// - internal/database, internal/repository: the activity log
package memberguard
