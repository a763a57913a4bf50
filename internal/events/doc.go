// Package events provides the audit event types and dispatch plumbing.
//
// Services emit an AuditEvent after each successful mutation without
// knowing which handlers will process it. The in-memory emitter fans
// events out to registered handlers; AuditLogHandler persists them to
// the audit log store.
package events
