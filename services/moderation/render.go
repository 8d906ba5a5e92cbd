package moderation

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderMatches writes a review table of the proposed deletions.
func RenderMatches(out io.Writer, matches []Match) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"source", "name", "comment", "reply", "reason", "content"})

	for _, match := range matches {
		reply := ""
		if match.ReplyID != 0 {
			reply = strconv.FormatInt(match.ReplyID, 10)
		}
		t.AppendRow(table.Row{
			match.Source.String(),
			match.BusinessName,
			strconv.FormatInt(match.CommentID, 10),
			reply,
			match.Reason.String(),
			match.Content,
		})
	}
	t.Render()
}
