// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for bulk messaging:
//  1. [ContactListView] : Browse preview rows and toggle recipients
//  2. [ComposeView] : Write the message and choose personalization
//  3. [ConfirmView] : Confirm the send, including the empty-selection fallback
//  4. [SendView] : Monitor real-time send progress
//  5. [ResultView] : Display the final delivery counts
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the CampaignEngine, providing non-blocking status reporting during sends.
//
// Contact names and message text are rendered as inert strings; nothing typed
// into the compose view or read from a spreadsheet is interpreted as markup.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
