// Package tags resolves the alert category of a CloudWatch alarm from its tags.
package tags
