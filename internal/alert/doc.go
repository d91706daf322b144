// Package alert delivers operator notifications.
//
// A Dispatcher resolves an alert category to recipients and hands the message
// to a Registry of email providers. The registry tries the primary provider
// first and then each fallback in order. Providers exist for Amazon SES,
// Resend and the process log (local runs).
package alert
