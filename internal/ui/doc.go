// Package ui implements the interactive drop zone using bubbletea's Elm architecture.
//
// The terminal stands in for the drop region of a web page:
//   - focus gained ([tea.FocusMsg]) is a drag entering the window and brightens the drop message
//   - focus lost ([tea.BlurMsg]) is a drag leaving and dims it again
//   - a bracketed paste is the drop itself; terminals paste the paths of files dropped onto them
//
// [Screen] holds the display state and [Screen.Apply] is its only transition function, so the trigger/effect table
// can be tested without a running program. The (view) [Model] implements Init/Update/View around it: pipeline events
// arrive over a channel from [tasks.Pipeline] and are fed back one at a time through the Msg union type.
//
// Log lines are shown in a bubbles/viewport that jumps to the bottom on every new line. A new drop cancels the
// run in flight; events from the cancelled run are discarded.
package ui
