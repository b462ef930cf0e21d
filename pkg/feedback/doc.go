// Package feedback renders learner-facing messages: start, win, hint and end
// texts.
//
// Messages are text/template templates with a few colour helpers backed by
// termenv. Start messages and hints can optionally be rendered as markdown
// with glamour.
package feedback
