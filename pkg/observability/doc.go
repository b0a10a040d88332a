/*
Package observability provides tools for monitoring the wizard.

It turns lifecycle hooks into Prometheus metrics and structured log lines.
Both are plain domain.LifecycleHooks values and can be merged with
domain.LifecycleHooks.Merge.
*/
package observability
