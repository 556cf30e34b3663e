package history

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
)

// WriteMarkdown renders rotations as a GitHub-flavored Markdown table,
// newest first, matching the order Rotations returns.
func WriteMarkdown(w io.Writer, rotations []Rotation) error {
	md := markdown.NewMarkdown(w)
	md.H1("Rotation History")
	md.PlainText("")

	rows := make([][]string, 0, len(rotations))
	for _, r := range rotations {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.RotatedAt.Format("2006-01-02 15:04:05 MST"),
			"`" + r.IP + "`",
			transportName(r.ViaProxy),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Time", "IP", "Transport"},
		Rows:   rows,
	})
	return md.Build()
}

// transportName names the probe path for display.
func transportName(viaProxy bool) string {
	if viaProxy {
		return "tor"
	}
	return "direct"
}
