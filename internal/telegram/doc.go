// Package telegram wraps the Telegram Bot API behind a small messenger
// interface so command handlers can be tested without a live bot.
package telegram
