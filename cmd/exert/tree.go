package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/exert/internal/platform"
	"github.com/1broseidon/exert/internal/tiling"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the container tree of every workspace",
	Args:  cobra.NoArgs,
	RunE:  runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().Bool("json", false, "Print the raw layout as JSON")
	treeCmd.Flags().Bool("all", false, "Include empty workspaces")
}

func runTree(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	snap, err := client.GetTree()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	all, _ := cmd.Flags().GetBool("all")
	styles := plainStyles()
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		styles = colorStyles()
	}
	renderSnapshot(out, snap, styles, all)
	return nil
}

type treeStyles struct {
	header   lipgloss.Style
	split    lipgloss.Style
	window   lipgloss.Style
	focused  lipgloss.Style
	hidden   lipgloss.Style
	floating lipgloss.Style
}

func plainStyles() treeStyles {
	s := lipgloss.NewStyle()
	return treeStyles{header: s, split: s, window: s, focused: s, hidden: s, floating: s}
}

func colorStyles() treeStyles {
	return treeStyles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		split:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		window:   lipgloss.NewStyle(),
		focused:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		hidden:   lipgloss.NewStyle().Faint(true),
		floating: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

func renderSnapshot(w io.Writer, snap *tiling.Snapshot, st treeStyles, all bool) {
	for _, ws := range snap.Workspaces {
		if !all && ws.Root == nil && len(ws.Floating) == 0 {
			continue
		}
		where := "hidden"
		if ws.Monitor != "" {
			where = "on " + ws.Monitor
		}
		header := fmt.Sprintf("workspace %d (%s)", ws.Index, where)
		if ws.Monitor == "" {
			fmt.Fprintln(w, st.hidden.Render(header))
		} else {
			fmt.Fprintln(w, st.header.Render(header))
		}
		if ws.Root != nil {
			renderNode(w, *ws.Root, "", len(ws.Floating) == 0, st, ws.Fullscreen)
		}
		for i, n := range ws.Floating {
			renderNode(w, n, "", i == len(ws.Floating)-1, st, ws.Fullscreen)
		}
	}
}

func renderNode(w io.Writer, n tiling.Node, prefix string, last bool, st treeStyles, fullscreen platform.WindowID) {
	branch, next := "├─ ", "│  "
	if last {
		branch, next = "└─ ", "   "
	}
	fmt.Fprintln(w, prefix+branch+describe(n, st, fullscreen))
	for i, c := range n.Children {
		renderNode(w, c, prefix+next, i == len(n.Children)-1, st, fullscreen)
	}
}

func describe(n tiling.Node, st treeStyles, fullscreen platform.WindowID) string {
	if n.Kind == "split" {
		return st.split.Render(fmt.Sprintf("%s %.2f", n.Direction, n.Ratio))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "0x%x", uint32(n.Window))
	if n.Rect != nil {
		fmt.Fprintf(&b, "  %dx%d+%d+%d", n.Rect.Width, n.Rect.Height, n.Rect.X, n.Rect.Y)
	}
	var tags []string
	if n.Floating {
		tags = append(tags, "floating")
	}
	if fullscreen != 0 && n.Window == fullscreen {
		tags = append(tags, "fullscreen")
	}
	if n.Focused {
		tags = append(tags, "focused")
	}
	if len(tags) > 0 {
		b.WriteString("  [" + strings.Join(tags, ", ") + "]")
	}

	switch {
	case n.Focused:
		return st.focused.Render(b.String())
	case n.Floating:
		return st.floating.Render(b.String())
	default:
		return st.window.Render(b.String())
	}
}
