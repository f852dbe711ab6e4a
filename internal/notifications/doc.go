// Package notifications broadcasts confirmed fire events and run summaries to
// Telegram chats. When no bot token is configured the service degrades to a
// noop so the pipeline never depends on delivery.
package notifications
