// Package acl is the Anti-Corruption Layer between the circulation engine and
// the remote payment gateway.
//
// Gateway DTOs, status strings and error codes never leave this package.
// [PaymentClient] speaks the gateway's JSON dialect over a [clients.Client]
// (retry, circuit breaker, tracing) and hands back domain.ChargeResult and
// domain.RefundResult values.
//
// # Outcomes
//
// Every exchange ends in one of three ways:
//
//   - approved: the result carries Approved=true
//   - declined: a 402, a DECLINED code or a "declined" status gives Approved=false
//     with the gateway's reason
//   - failed: transport errors, 5xx, unknown statuses and unreadable bodies
//     become a domain.UnavailableError of kind payment_gateway_error
//
// [MapHTTPError] and [MapExternalCode] perform the failure mapping and can be
// reused by any further gateway adapter.
//
// Charges and refunds carry an [IdempotencyKeyHeader] so a retried POST is not
// billed twice.
package acl
