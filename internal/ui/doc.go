// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// [Menu] lists the actions (Generate Playlist, Recommend Songs, Add to Queue, Summarize Playlists, Exit) and prompts
// for the input an action needs, returning a [Choice] once the program quits.
//
// [TaskModel] runs one action in the background. Progress updates flow through a channel from the task engines and are
// drawn with a bubbles progress bar until the task reports its output.
//
// [ProgressBar] is the non-interactive counterpart for plain CLI commands, redrawing one line per update.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
