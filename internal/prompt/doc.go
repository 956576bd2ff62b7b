// Package prompt inspects user-supplied chat text before it is stored or
// forwarded: Redact masks personal data in audit records and Screen flags
// phrases commonly used to subvert the system instruction.
package prompt
