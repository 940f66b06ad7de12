// Command flexctl inspects and converts flex documents from the shell.
//
//	flexctl validate [file]   check that a wire document hydrates
//	flexctl strip [file]      drop editor ids from a stored document
//	flexctl hydrate [file]    assign fresh ids to a wire document
//	flexctl outline [file]    print the node tree
//
// Without a file, the document is read from stdin.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"flex-designer-be/pkg/flex"
	"flex-designer-be/pkg/flex/codec"

	"github.com/fatih/color"
)

const usage = "usage: flexctl <validate|strip|hydrate|outline> [file]"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return 2
	}

	data, err := readInput(args[1:], stdin)
	if err != nil {
		color.New(color.FgRed).Fprintf(stderr, "read: %v\n", err)
		return 1
	}

	switch args[0] {
	case "validate":
		err = validate(data, stdout)
	case "strip":
		err = strip(data, stdout)
	case "hydrate":
		err = hydrate(data, stdout)
	case "outline":
		err = outline(data, stdout)
	default:
		fmt.Fprintln(stderr, usage)
		return 2
	}
	if err != nil {
		color.New(color.FgRed).Fprintf(stderr, "%s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func readInput(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}

func validate(data []byte, w io.Writer) error {
	root, err := codec.HydrateJSON(data)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(w, "OK: %s with %d nodes\n", root.NodeType(), flex.Count(root))
	return nil
}

func strip(data []byte, w io.Writer) error {
	n, err := flex.DecodeNode(data)
	if err != nil {
		return err
	}
	return writeJSON(w, codec.Strip(n))
}

func hydrate(data []byte, w io.Writer) error {
	root, err := codec.HydrateJSON(data)
	if err != nil {
		return err
	}
	return writeJSON(w, root)
}

func writeJSON(w io.Writer, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = w.Write(out.Bytes())
	return err
}

var (
	typeColor  = color.New(color.FgCyan, color.Bold)
	slotColor  = color.New(color.FgYellow)
	idColor    = color.New(color.Faint)
	valueColor = color.New(color.FgGreen)
)

func outline(data []byte, w io.Writer) error {
	n, err := flex.DecodeNode(data)
	if err != nil {
		return err
	}
	if !n.NodeType().IsContainer() {
		return errors.New("document root must be a bubble or carousel")
	}
	printNode(w, n, "", 0)
	return nil
}

func printNode(w io.Writer, n flex.Node, label string, depth int) {
	fmt.Fprint(w, strings.Repeat("  ", depth))
	if label != "" {
		slotColor.Fprintf(w, "%s: ", label)
	}
	typeColor.Fprint(w, n.NodeType())
	if summary := summarize(n); summary != "" {
		fmt.Fprint(w, " ")
		valueColor.Fprint(w, summary)
	}
	if id := n.NodeID(); id != "" {
		idColor.Fprintf(w, " #%s", id)
	}
	fmt.Fprintln(w)

	for _, c := range flex.Children(n) {
		label := string(c.Slot)
		if c.Slot.Ordered() {
			label = fmt.Sprintf("%d", c.Index)
		}
		printNode(w, c.Node, label, depth+1)
	}
}

func summarize(n flex.Node) string {
	switch v := n.(type) {
	case *flex.Box:
		return v.Layout
	case *flex.Text:
		return fmt.Sprintf("%q", truncate(v.Text, 40))
	case *flex.Image:
		return v.URL
	case *flex.Icon:
		return v.URL
	case *flex.Video:
		return v.URL
	case *flex.Button:
		if v.Action != nil {
			return fmt.Sprintf("[%s]", v.Action.Label)
		}
	case *flex.Bubble:
		return v.Size
	}
	return ""
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
