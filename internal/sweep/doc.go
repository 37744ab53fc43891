// Package sweep deletes collections of cloud resources under a provider rate
// limit: items are processed in fixed size concurrent batches and every delete
// is retried with exponential backoff while the provider keeps throttling it.
package sweep
