// Package retry provides exponential backoff retry logic.
//
// [Do] retries an operation with configurable attempts and delays. By default
// every error except those wrapped with [Fatal] is retried; [WithRetryIf]
// narrows that, which is how aws-auth writes retry only on resourceVersion
// conflicts while every other failure goes straight back to the caller.
package retry
